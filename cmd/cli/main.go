// Package main is the entry point for the storeplane CLI.
// The CLI is the operator terminal tool for interacting with the storeplane API.
package main

import (
	"os"

	"storeplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
