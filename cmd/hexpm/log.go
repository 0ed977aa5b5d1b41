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
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// consoleOutput returns the writer hexpm's log.Logger renders to: a
// coloured, human-readable zerolog.ConsoleWriter when stdout is a
// terminal (wrapped through go-colorable so ANSI codes render on
// Windows consoles too), or the same human-readable ConsoleWriter on
// plain stdout with colour disabled when it isn't, e.g. when piped to a
// file or another process.
func consoleOutput() zerolog.ConsoleWriter {
	out := os.Stdout
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return zerolog.ConsoleWriter{Out: colorable.NewColorable(out), NoColor: false}
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: true}
}
