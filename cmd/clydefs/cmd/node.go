/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Insert, remove, read and write nodes within a tree",
}

var nodeInsertCmd = &cobra.Command{
	Use:   "insert <tid>",
	Short: "Allocate a node in tid and print its nid",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid tid %q\n", args[0])
			os.Exit(1)
		}
		nid, err := container.Tree().NodeInsert(tid)
		if err != nil {
			fmt.Printf("Error inserting node: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(nid)
	},
}

var nodeRemoveCmd = &cobra.Command{
	Use:   "remove <tid> <nid>",
	Short: "Remove a node and free its payload",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := container.Tree().NodeRemove(tid, nid); err != nil {
			fmt.Printf("Error removing node: %v\n", err)
			os.Exit(1)
		}
	},
}

var nodeWriteCmd = &cobra.Command{
	Use:   "write <tid> <nid> <offset> <data>",
	Short: "Write data into a node's payload at offset",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		offset, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid offset %q\n", args[2])
			os.Exit(1)
		}
		data := []byte(args[3])
		if err := container.Tree().NodeWrite(tid, nid, offset, uint64(len(data)), data); err != nil {
			fmt.Printf("Error writing node: %v\n", err)
			os.Exit(1)
		}
	},
}

var nodeReadCmd = &cobra.Command{
	Use:   "read <tid> <nid> <offset> <length>",
	Short: "Read a node's payload at offset and print it",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		tid, nid, err := parseTidNid(args[0], args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		offset, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid offset %q\n", args[2])
			os.Exit(1)
		}
		length, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			fmt.Printf("Error: invalid length %q\n", args[3])
			os.Exit(1)
		}
		buf := make([]byte, length)
		if err := container.Tree().NodeRead(tid, nid, offset, length, buf); err != nil {
			fmt.Printf("Error reading node: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(buf)
		fmt.Println()
	},
}

func parseTidNid(rawTid, rawNid string) (tid, nid uint64, err error) {
	tid, err = strconv.ParseUint(rawTid, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid tid %q", rawTid)
	}
	nid, err = strconv.ParseUint(rawNid, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid nid %q", rawNid)
	}
	return tid, nid, nil
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.AddCommand(nodeInsertCmd)
	nodeCmd.AddCommand(nodeRemoveCmd)
	nodeCmd.AddCommand(nodeWriteCmd)
	nodeCmd.AddCommand(nodeReadCmd)
}
