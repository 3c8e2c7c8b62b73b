// Package main provides the entry point for the mlcc container scaffolding CLI.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
