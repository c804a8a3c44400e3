// Package main implements the dtree CLI.
// It renders decision tree diagrams of Python source files.
package main

import (
	"os"

	"github.com/l3aro/go-decision-tree/cmd/dtree/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (built " + buildTime + ")"
	}
	commands.RootCmd.SetVersionTemplate(`dtree version {{.Version}}
`)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
