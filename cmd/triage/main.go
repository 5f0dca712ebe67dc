// Package main provides the entry point for the triage CLI.
package main

import "os"

// version is set at build time.
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		fatal(err)
		os.Exit(1)
	}
}
