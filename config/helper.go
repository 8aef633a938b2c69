package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
)

var medlaunchHomeDir string

// mustGetConfigHomeDir returns the full path to the home directory that stores the config file.
// Uses global variable.
func mustGetConfigHomeDir() string {
	if medlaunchHomeDir == "" {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		medlaunchHomeDir = path.Join(home, MainDir)
	}
	return medlaunchHomeDir
}

func mustGetConfigFilePath() string {
	return path.Join(mustGetConfigHomeDir(), MainFileFullName)
}
