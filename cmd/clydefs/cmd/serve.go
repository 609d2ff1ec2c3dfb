/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debug/inspection HTTP server",
	Long: `Start the clydefs debug HTTP server: tree/node/directory
inspection endpoints, Prometheus metrics and swagger documentation.

Example:
  clydefs serve`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := container.StartServer(); err != nil {
			fmt.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
