package main

import (
	"os"

	"keybridge/cmd/keybridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
