/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clydefs/clydefs/pkg/codec"
	"github.com/clydefs/clydefs/pkg/itbl"
)

var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Create and inspect directories built on the itbl layer",
}

var dirCreateCmd = &cobra.Command{
	Use:   "create <tid>",
	Short: "Allocate a directory node in tid and print its nid",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid tid %q\n", args[0])
			os.Exit(1)
		}
		dir, err := itbl.Create(container.Tree(), tid)
		if err != nil {
			fmt.Printf("Error creating directory: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(dir.Nid())
	},
}

var dirListCmd = &cobra.Command{
	Use:   "ls <tid> <nid>",
	Short: "List every live entry in a directory",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		entries, err := itbl.Open(container.Tree(), tid, nid).List()
		if err != nil {
			fmt.Printf("Error listing directory: %v\n", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("%s\tino=%d\n", e.NameString(), e.Ino)
		}
	},
}

var dirPutCmd = &cobra.Command{
	Use:   "put <tid> <nid> <name> <ino>",
	Short: "Insert a directory entry",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ino, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid ino %q\n", args[3])
			os.Exit(1)
		}
		e := &codec.Entry{Ino: ino}
		if err := e.SetName(args[2]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := itbl.Open(container.Tree(), tid, nid).Insert(e); err != nil {
			fmt.Printf("Error inserting entry: %v\n", err)
			os.Exit(1)
		}
	},
}

var dirFindCmd = &cobra.Command{
	Use:   "find <tid> <nid> <name>",
	Short: "Find a directory entry by name",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		e, _, err := itbl.Open(container.Tree(), tid, nid).Find(args[2])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\tino=%d\n", e.NameString(), e.Ino)
	},
}

var dirRemoveCmd = &cobra.Command{
	Use:   "rm <tid> <nid> <name>",
	Short: "Remove a directory entry by name",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		dir := itbl.Open(container.Tree(), tid, nid)
		_, loc, err := dir.Find(args[2])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := dir.Delete(loc); err != nil {
			fmt.Printf("Error removing entry: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dirCmd)
	dirCmd.AddCommand(dirCreateCmd)
	dirCmd.AddCommand(dirListCmd)
	dirCmd.AddCommand(dirPutCmd)
	dirCmd.AddCommand(dirFindCmd)
	dirCmd.AddCommand(dirRemoveCmd)
}
