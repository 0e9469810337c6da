// Package main provides the entry point for the OrthoView tool.
package main

import (
	"log"

	"orthoview/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cli.Execute()
}
