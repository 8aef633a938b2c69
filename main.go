package main

import "github.com/neeldave10/medlaunch-data-engineer/cmd"

func main() {
	cmd.Execute()
}
