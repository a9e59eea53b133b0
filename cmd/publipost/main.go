/*
Package main provides the CLI entry point for publipost.
*/
package main

import (
	"os"

	"github.com/publipost/publipost/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
