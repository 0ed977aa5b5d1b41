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

// Package semver implements the Hex package registry's version and
// requirement grammar: a semantic-version-flavoured version literal with
// well defined total ordering, and a small boolean algebra of requirement
// expressions ("ranges") compiled down to sets of half-open version
// intervals for use by the resolver.
package semver

import "fmt"

// tokType identifies the kind of a lexed token.
type tokType int

const (
	tokEOF tokType = iota
	tokInt
	tokIdent
	tokDot
	tokHyphen
	tokPlus
	tokEq
	tokNotEq
	tokGreater
	tokLess
	tokGreaterEq
	tokLessEq
	tokTilde
	tokAnd
	tokOr
)

func (t tokType) String() string {
	switch t {
	case tokEOF:
		return "EOF"
	case tokInt:
		return "integer"
	case tokIdent:
		return "identifier"
	case tokDot:
		return "'.'"
	case tokHyphen:
		return "'-'"
	case tokPlus:
		return "'+'"
	case tokEq:
		return "'=='"
	case tokNotEq:
		return "'!='"
	case tokGreater:
		return "'>'"
	case tokLess:
		return "'<'"
	case tokGreaterEq:
		return "'>='"
	case tokLessEq:
		return "'<='"
	case tokTilde:
		return "'~>'"
	case tokAnd:
		return "'and'"
	case tokOr:
		return "'or'"
	default:
		return fmt.Sprintf("tokType(%d)", int(t))
	}
}

// token is a single lexed unit together with the literal text it was read
// from. text is used to reconstruct error messages and to classify
// pre-release identifiers.
type token struct {
	typ  tokType
	text string
}
