// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command hexpm is a thin command-line front end over the semver,
// resolve and registry packages: it parses versions and requirements,
// checks one against the other, and resolves a dependency set against
// the live Hex registry.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gohex/hexpm/registry"
)

var (
	cfgFile string
	verbose bool
	cfg     registry.Config
)

var rootCmd = &cobra.Command{
	Use:   "hexpm",
	Short: "Inspect Hex package versions, ranges and dependency resolution",
	Long:  "hexpm parses Hex version and requirement strings, resolves dependency sets with the same algorithm the client library uses, and talks to a Hex-compatible registry.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Logger.Level(level)

		if cmd.Parent() != nil && (cmd.Parent().Name() == "version" || cmd.Parent().Name() == "range") {
			return nil
		}
		loaded, err := registry.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: env vars only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
	log.Logger = log.Output(consoleOutput())
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
