// main.go: cryptoperf, known-answer tests and throughput runs for the engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	cryptodev "github.com/agilira/hephaestus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "cryptoperf",
		Short:         "Exercise the cryptodev engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "engine configuration file (yaml)")

	cmd.AddCommand(newKATCmd(&cfgFile), newBenchCmd(&cfgFile))
	return cmd
}

// startEngine loads the configuration (defaults when path is empty) and
// initializes an engine.
func startEngine(ctx context.Context, path string) (*cryptodev.Engine, error) {
	cfg := cryptodev.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = cryptodev.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	engine, err := cryptodev.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Init(ctx); err != nil {
		return nil, fmt.Errorf("engine init: %w", err)
	}
	return engine, nil
}
