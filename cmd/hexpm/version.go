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

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Inspect Hex version literals",
}

var versionParseCmd = &cobra.Command{
	Use:   "parse <version>",
	Short: "Parse a version literal and print its components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := semver.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("major=%d minor=%d patch=%d pre=%v build=%q is_pre=%v\n",
			v.Major, v.Minor, v.Patch, v.Pre, v.Build, v.IsPre())
		return nil
	},
}

var versionCompareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare two version literals",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := semver.Parse(args[0])
		if err != nil {
			return err
		}
		b, err := semver.Parse(args[1])
		if err != nil {
			return err
		}
		switch c := a.Compare(b); {
		case c < 0:
			fmt.Println("<")
		case c > 0:
			fmt.Println(">")
		default:
			fmt.Println("=")
		}
		return nil
	},
}

func init() {
	versionCmd.AddCommand(versionParseCmd, versionCompareCmd)
	rootCmd.AddCommand(versionCmd)
}
