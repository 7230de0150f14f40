package main

import (
	"os"

	"github.com/skipera/skipera/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
