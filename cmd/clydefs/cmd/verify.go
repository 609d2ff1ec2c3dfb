/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clydefs/clydefs/pkg/harness"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the engine's concrete scenario battery",
	Long: `Run every scenario pkg/harness exercises against the B-link
tree engine and the chunk/directory layer, printing a pass/fail line
per scenario. A failing scenario is also reported to Sentry with its
correlation id for later lookup.

Example:
  clydefs verify`,
	Run: func(cmd *cobra.Command, args []string) {
		results := harness.RunAll()
		failed := 0
		for _, r := range results {
			status := "PASS"
			if !r.Passed() {
				status = "FAIL"
				failed++
			}
			fmt.Printf("%-32s %s  %s  %s\n", r.Name, status, r.Duration, r.ID)
			if !r.Passed() {
				fmt.Printf("  %v\n", r.Err)
			}
		}
		if failed > 0 {
			fmt.Printf("\n%d/%d scenarios failed\n", failed, len(results))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
