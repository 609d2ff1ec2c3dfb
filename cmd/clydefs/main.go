/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"
	"os"

	"github.com/clydefs/clydefs/cmd/clydefs/cmd"
	"github.com/clydefs/clydefs/pkg/config"
	"github.com/clydefs/clydefs/pkg/di"
)

func main() {
	cfg := config.DefaultConfig()
	if path := config.GetDefaultConfigPath(); config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		fmt.Printf("Error building container: %v\n", err)
		os.Exit(1)
	}

	cmd.SetContainer(container)
	cmd.Execute()
}
