// Package main is the entry point for the lvunit CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/lvunit/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
