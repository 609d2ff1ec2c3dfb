/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clydefs/clydefs/pkg/treeiface"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Create, remove and list B-link trees",
}

var treeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a tree and print its tid",
	Long: `Create a tree with the given split threshold k and print its tid.

Example:
  clydefs tree create --k=32`,
	Run: func(cmd *cobra.Command, args []string) {
		k, _ := cmd.Flags().GetUint8("k")
		tid, err := container.Tree().TreeCreate(k)
		if err != nil {
			fmt.Printf("Error creating tree: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tid)
	},
}

var treeRemoveCmd = &cobra.Command{
	Use:   "remove <tid>",
	Short: "Remove a tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid tid %q\n", args[0])
			os.Exit(1)
		}
		if err := container.Tree().TreeRemove(tid); err != nil {
			fmt.Printf("Error removing tree: %v\n", err)
			os.Exit(1)
		}
	},
}

var treeListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every live tid",
	Run: func(cmd *cobra.Command, args []string) {
		lister, ok := container.Tree().(treeiface.TreeLister)
		if !ok {
			fmt.Println("Error: the wired tree implementation does not support listing")
			os.Exit(1)
		}
		for _, tid := range lister.ListTrees() {
			fmt.Println(tid)
		}
	},
}

var treeInspectCmd = &cobra.Command{
	Use:   "inspect <tid>",
	Short: "Dump a tree's level-by-level key structure (requires -tags clydebug)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid tid %q\n", args[0])
			os.Exit(1)
		}
		inspector, ok := container.Tree().(treeiface.TreeInspector)
		if !ok {
			fmt.Println("Error: the wired tree implementation does not support inspection")
			os.Exit(1)
		}
		levels, err := inspector.DebugWalk(tid)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for i, level := range levels {
			fmt.Printf("level %d: %v\n", i, level)
		}
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treeCreateCmd)
	treeCmd.AddCommand(treeRemoveCmd)
	treeCmd.AddCommand(treeListCmd)
	treeCmd.AddCommand(treeInspectCmd)

	treeCreateCmd.Flags().Uint8("k", 32, "split threshold")
}
