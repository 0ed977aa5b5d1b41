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

	"github.com/spf13/cobra"

	"github.com/gohex/hexpm/semver"
)

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Inspect Hex requirement ranges",
}

var rangeCheckCmd = &cobra.Command{
	Use:   "check <requirement> <version>",
	Short: "Report whether a version satisfies a requirement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := semver.NewRange(args[0])
		if err != nil {
			return err
		}
		v, err := semver.Parse(args[1])
		if err != nil {
			return err
		}
		if r.Contains(v) {
			fmt.Println("satisfies")
			return nil
		}
		fmt.Println("does not satisfy")
		return nil
	},
}

func init() {
	rangeCmd.AddCommand(rangeCheckCmd)
	rootCmd.AddCommand(rangeCmd)
}
