package main

import (
	"os"

	"github.com/david/studio-desk/cmd/studioctl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
