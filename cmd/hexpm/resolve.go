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

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gohex/hexpm/registry"
	"github.com/gohex/hexpm/resolve"
	"github.com/gohex/hexpm/semver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <package>=<requirement> ...",
	Short: "Resolve a set of top-level requirements against the registry",
	Long:  "resolve takes one or more name=requirement pairs and prints a version that satisfies every transitive dependency, using the same PubGrub-style search the client library exposes as resolve.Resolve.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.APIBase == "" {
			cfg = registry.DefaultConfig()
		}
		root := make(map[string]semver.Range, len(args))
		for _, arg := range args {
			name, spec, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("argument %q must be of the form name=requirement", arg)
			}
			r, err := semver.NewRange(spec)
			if err != nil {
				return fmt.Errorf("parsing requirement for %s: %w", name, err)
			}
			root[name] = r
		}

		client := registry.NewClient(cfg, nil)
		fetcher := registry.NewFetcher(client)

		resolved, err := resolve.Resolve(fetcher, root, nil)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(resolved))
		for name := range resolved {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s %s\n", name, resolved[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
