package main

import (
	"os"

	"groscore/cmd/groscore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
