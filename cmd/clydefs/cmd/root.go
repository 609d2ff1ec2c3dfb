/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clydefs/clydefs/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency injection container built by
// main, the way cmd/freyja/main.go hands its own container to this
// package before Execute runs.
func SetContainer(c *di.Container) {
	container = c
}

var rootCmd = &cobra.Command{
	Use:   "clydefs",
	Short: "clydefs - a B-link tree and chunked directory table engine",
	Long: `clydefs exposes the tree-interface ABI (tree_create/tree_remove/
node_insert/node_remove/node_read/node_write) and the chunked
directory layer built on top of it, for inspection and scenario
verification rather than as a mountable filesystem.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
