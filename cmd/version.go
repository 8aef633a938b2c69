package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information for the Medlaunch pipeline tool",
	Long:  `Show version information for the Medlaunch pipeline tool`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf(`Medlaunch pipeline
  Version:	%v
  Build date:	%v
  OS/arch:	%v
`, version, buildDate, osArch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
