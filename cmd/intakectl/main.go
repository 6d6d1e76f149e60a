package main

import (
	"os"

	"estate-intake/cmd/intakectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
