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

package semver

import (
	"fmt"
)

// Range is a compiled Hex requirement expression: the literal text the
// caller wrote, plus the set of version intervals it denotes.
//
//	or_expr  := and_expr ("or" and_expr)*
//	and_expr := atom ("and" atom)*
//	atom     := operator? partial_version
//	operator := "==" | "!=" | ">" | "<" | ">=" | "<=" | "~>"
//
// An atom with no operator defaults to "==". Every operator accepts a
// partial version omitting its minor and/or patch component ("> 1",
// "== 1.2"), which is zero-filled and then compiled exactly as the full
// version would be ("> 1" means "> 1.0.0" and excludes 1.0.0); "~>"
// additionally requires at least a major.minor version, since a bare
// major would make it meaningless.
type Range struct {
	spec string
	set  set
}

// NewRange parses spec as a Hex requirement and compiles it to its
// interval representation.
func NewRange(spec string) (Range, error) {
	l := newLexer(spec)
	s, err := parseOrExpr(l)
	if err != nil {
		return Range{}, fmt.Errorf("invalid requirement %q: %w", spec, err)
	}
	tok, err := l.next()
	if err != nil {
		return Range{}, fmt.Errorf("invalid requirement %q: %w", spec, err)
	}
	if tok.typ != tokEOF {
		return Range{}, fmt.Errorf("invalid requirement %q: unexpected trailing %s", spec, tok.typ)
	}
	return Range{spec: spec, set: s}, nil
}

// String returns the literal requirement text the Range was parsed from.
func (r Range) String() string { return r.spec }

// Contains reports whether v satisfies r.
func (r Range) Contains(v Version) bool { return r.set.contains(v) }

// Any reports whether r can be satisfied by at least one version at all
// (i.e. its compiled interval set is non-empty).
func (r Range) Any() bool { return !r.set.empty() }

// Exact returns the Range matching only v, equivalent to parsing
// "== v". It is used to pin a package to a locked version without
// round-tripping through text.
func Exact(v Version) Range {
	return Range{spec: "== " + v.String(), set: newSet(exactSpan(v))}
}

// Intersect returns the Range matching versions that satisfy both r
// and o, used to combine two independent requirements on the same
// package discovered from different dependents during resolution.
func (r Range) Intersect(o Range) Range {
	return Range{spec: r.spec + " and " + o.spec, set: r.set.intersect(o.set)}
}

func parseOrExpr(l *lexer) (set, error) {
	s, err := parseAndExpr(l)
	if err != nil {
		return set{}, err
	}
	for {
		tok, err := l.peek()
		if err != nil {
			return set{}, err
		}
		if tok.typ != tokOr {
			return s, nil
		}
		l.next()
		rhs, err := parseAndExpr(l)
		if err != nil {
			return set{}, err
		}
		s = s.union(rhs)
	}
}

func parseAndExpr(l *lexer) (set, error) {
	s, err := parseAtom(l)
	if err != nil {
		return set{}, err
	}
	for {
		tok, err := l.peek()
		if err != nil {
			return set{}, err
		}
		if tok.typ != tokAnd {
			return s, nil
		}
		l.next()
		rhs, err := parseAtom(l)
		if err != nil {
			return set{}, err
		}
		s = s.intersect(rhs)
	}
}

func parseAtom(l *lexer) (set, error) {
	op, err := parseOperator(l)
	if err != nil {
		return set{}, err
	}
	v, parts, err := parsePartialVersion(l)
	if err != nil {
		return set{}, err
	}
	if op == tokTilde && parts < 2 {
		return set{}, fmt.Errorf("~> requires at least a major.minor version, got %q", v.String())
	}
	if op == tokNotEq {
		return compileNotEqual(v), nil
	}
	sp, err := compileAtom(op, v, parts)
	if err != nil {
		return set{}, err
	}
	return newSet(sp), nil
}

// parseOperator consumes a leading comparison operator, defaulting to
// tokEq (exact match) when none is present.
func parseOperator(l *lexer) (tokType, error) {
	tok, err := l.peek()
	if err != nil {
		return 0, err
	}
	switch tok.typ {
	case tokEq, tokNotEq, tokGreater, tokLess, tokGreaterEq, tokLessEq, tokTilde:
		l.next()
		return tok.typ, nil
	default:
		return tokEq, nil
	}
}

// parsePartialVersion parses a version literal that may omit its minor
// and/or patch component (as "~>" requires), returning the version with
// missing components filled in as zero and the number of components
// actually present.
func parsePartialVersion(l *lexer) (Version, int, error) {
	major, err := parseVersionInt(l)
	if err != nil {
		return Version{}, 0, err
	}
	v := Version{Major: major}
	parts := 1

	tok, err := l.peek()
	if err != nil {
		return Version{}, 0, err
	}
	if tok.typ != tokDot {
		return v, parts, finishPartialVersion(l, v)
	}
	l.next()
	minor, err := parseVersionInt(l)
	if err != nil {
		return Version{}, 0, err
	}
	v.Minor = minor
	parts = 2

	tok, err = l.peek()
	if err != nil {
		return Version{}, 0, err
	}
	if tok.typ != tokDot {
		return v, parts, finishPartialVersion(l, v)
	}
	l.next()
	patch, err := parseVersionInt(l)
	if err != nil {
		return Version{}, 0, err
	}
	v.Patch = patch
	parts = 3

	if err := finishPartialVersionParts(l, &v); err != nil {
		return Version{}, 0, err
	}
	return v, parts, nil
}

// finishPartialVersion is used when parsing stops at 1 or 2 components
// (accepted for every operator, though "~>" rejects a bare major later
// in parseAtom); pre-release/build suffixes are not permitted on a
// partial version.
func finishPartialVersion(l *lexer, v Version) error {
	tok, err := l.peek()
	if err != nil {
		return err
	}
	if tok.typ != tokEOF && tok.typ != tokAnd && tok.typ != tokOr {
		return fmt.Errorf("unexpected %s after partial version %q", tok.typ, v.String())
	}
	return nil
}

func finishPartialVersionParts(l *lexer, v *Version) error {
	tok, err := l.peek()
	if err != nil {
		return err
	}
	if tok.typ == tokHyphen {
		l.next()
		pre, err := parsePreRelease(l)
		if err != nil {
			return err
		}
		v.Pre = pre
		tok, err = l.peek()
		if err != nil {
			return err
		}
	}
	if tok.typ == tokPlus {
		l.next()
		build, err := parseBuild(l)
		if err != nil {
			return err
		}
		v.Build = build
	}
	return nil
}

// compileAtom turns one (operator, version) pair into the span it
// denotes. parts records how many components the literal actually
// specified, which only matters for "~>".
func compileAtom(op tokType, v Version, parts int) (span, error) {
	switch op {
	case tokEq:
		return exactSpan(v), nil
	case tokGreater:
		return above(v), nil
	case tokGreaterEq:
		return atLeast(v), nil
	case tokLess:
		return below(v), nil
	case tokLessEq:
		return atMost(v), nil
	case tokTilde:
		return compileTilde(v, parts), nil
	default:
		return span{}, fmt.Errorf("unsupported operator %s", op)
	}
}

// compileTilde implements Hex's "approximately greater than": with a
// full major.minor.patch literal it locks major.minor and allows patch
// to grow; with a two-component literal it locks major and allows minor
// (and patch) to grow.
func compileTilde(v Version, parts int) span {
	lo := v
	var hi Version
	switch parts {
	case 2:
		hi = Version{Major: v.Major + 1}
	default:
		hi = Version{Major: v.Major, Minor: v.Minor + 1}
	}
	return between(lo, false, hi, true, v.IsPre())
}

// compileNotEqual implements "!=" as the complement of exactSpan(v) —
// the union of the spans strictly below v and at-or-above bump(v). Its
// allowPre bit follows the same rule as every other atom: a pre-release
// candidate only matches if the bound (v) is itself a pre-release.
func compileNotEqual(v Version) set {
	hi := v.Bump()
	lower := span{lo: zeroVersion, hi: v, hiOpen: true, allowPre: v.IsPre()}
	upper := span{lo: hi, hiInf: true, allowPre: v.IsPre()}
	return set{spans: []span{lower, upper}}.canon()
}
