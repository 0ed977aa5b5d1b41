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

// This file implements the interval arithmetic a compiled Range is built
// from: half-open spans of the version line, each additionally tagged
// with whether it was derived from a bound that was itself a
// pre-release. Hex only ever matches a pre-release candidate against a
// span whose defining bound carries a pre-release tag of its own; a
// plain "> 1.0.0" never matches "1.1.0-rc1" even though it would match
// every release in between.

// span is a half-open interval [lo, hi) of the version line, or, when hi
// is absent, [lo, +inf). allowPre records whether the atom this span
// was compiled from had a pre-release bound, and therefore whether the
// span is eligible to match pre-release candidates at all.
type span struct {
	lo       Version
	loOpen   bool
	hi       Version
	hiOpen   bool
	hiInf    bool
	allowPre bool
}

// zeroVersion is 0.0.0, the lowest release version, used as the lower
// bound of every "<", "<=" and "!=" span. Pre-releases of 0.0.0 sort
// below it, so no span starting here contains them.
var zeroVersion = Version{}

// exactSpan implements "== v" as the half-open interval [v, bump(v)),
// per the spec's bump-based realisation of a single-version match
// (rather than a closed point), so that it composes uniformly with the
// other operators' half-open spans.
func exactSpan(v Version) span {
	return span{lo: v, hi: v.Bump(), hiOpen: true, allowPre: v.IsPre()}
}

func atLeast(v Version) span {
	return span{lo: v, hiInf: true, allowPre: v.IsPre()}
}

func above(v Version) span {
	return span{lo: v, loOpen: true, hiInf: true, allowPre: v.IsPre()}
}

// atMost implements "<= v" as (-inf, bump(v)), so it admits every
// version that "== v" would have.
func atMost(v Version) span {
	return span{lo: zeroVersion, hi: v.Bump(), hiOpen: true, allowPre: v.IsPre()}
}

func below(v Version) span {
	return span{lo: zeroVersion, hi: v, hiOpen: true, allowPre: v.IsPre()}
}

func between(lo Version, loOpen bool, hi Version, hiOpen bool, allowPre bool) span {
	return span{lo: lo, loOpen: loOpen, hi: hi, hiOpen: hiOpen, allowPre: allowPre}
}

// empty reports whether s contains no version at all.
func (s span) empty() bool {
	if s.hiInf {
		return false
	}
	c := s.lo.Compare(s.hi)
	if c > 0 {
		return true
	}
	if c == 0 && (s.loOpen || s.hiOpen) {
		return true
	}
	return false
}

// contains reports whether v falls within s, honouring the pre-release
// matching rule: a pre-release v is only ever matched by a span whose
// defining bound was itself a pre-release.
func (s span) contains(v Version) bool {
	if v.IsPre() && !s.allowPre {
		return false
	}
	if c := v.Compare(s.lo); c < 0 || (c == 0 && s.loOpen) {
		return false
	}
	if s.hiInf {
		return true
	}
	if c := v.Compare(s.hi); c > 0 || (c == 0 && s.hiOpen) {
		return false
	}
	return true
}

// overlaps reports whether s and o share any version, ignoring allowPre
// (used only for merging spans emitted by the same union/intersection,
// where allowPre is tracked separately).
func (s span) overlaps(o span) bool {
	lo, hi := s, o
	if cmpBound(hi.loBound(), lo.loBound()) < 0 {
		lo, hi = hi, lo
	}
	if lo.hiInf {
		return true
	}
	c := lo.hi.Compare(hi.lo)
	return c > 0 || (c == 0 && !lo.hiOpen && !hi.loOpen)
}

// adjacent reports whether s and o touch with no gap, so their union is
// a single contiguous span (e.g. [1,2) and [2,3)).
func (s span) adjacent(o span) bool {
	a, b := s, o
	if cmpBound(b.loBound(), a.loBound()) < 0 {
		a, b = b, a
	}
	if a.hiInf {
		return false
	}
	return a.hi.Equal(b.lo) && a.hiOpen != b.loOpen
}

type bound struct {
	v    Version
	open bool
	inf  bool
}

func (s span) loBound() bound { return bound{v: s.lo, open: s.loOpen} }

func hiAsLoBound(s span) bound {
	if s.hiInf {
		return bound{inf: true}
	}
	return bound{v: s.hi, open: s.hiOpen}
}

// cmpBound orders two lower-style bounds by version then openness
// (closed sorts before open at the same value, matching interval-start
// semantics).
func cmpBound(a, b bound) int {
	if a.inf != b.inf {
		if a.inf {
			return 1
		}
		return -1
	}
	if a.inf {
		return 0
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	if a.open == b.open {
		return 0
	}
	if a.open {
		return 1
	}
	return -1
}

func cmpVersionOpen(a Version, aOpen bool, b Version, bOpen bool) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	if aOpen == bOpen {
		return 0
	}
	if aOpen {
		return 1
	}
	return -1
}

// intersect returns the overlap of s and o, or (span{}, false) if they
// are disjoint. The result's allowPre is the OR of the inputs'. This
// matches the common idiom of pinning a pre-release window with a
// release upper bound, e.g. ">= 1.0.0-rc1 and < 1.0.0": the upper bound
// alone would never admit a pre-release, but paired with a lower bound
// that names one explicitly, the conjunction as a whole should.
func (s span) intersect(o span) (span, bool) {
	lo, loOpen := s.lo, s.loOpen
	if c := cmpBound(o.loBound(), s.loBound()); c > 0 {
		lo, loOpen = o.lo, o.loOpen
	}
	var hi Version
	var hiOpen, hiInf bool
	switch {
	case s.hiInf && o.hiInf:
		hiInf = true
	case s.hiInf:
		hi, hiOpen = o.hi, o.hiOpen
	case o.hiInf:
		hi, hiOpen = s.hi, s.hiOpen
	default:
		if c := cmpVersionOpen(s.hi, s.hiOpen, o.hi, o.hiOpen); c <= 0 {
			hi, hiOpen = s.hi, s.hiOpen
		} else {
			hi, hiOpen = o.hi, o.hiOpen
		}
	}
	r := span{lo: lo, loOpen: loOpen, hi: hi, hiOpen: hiOpen, hiInf: hiInf, allowPre: s.allowPre || o.allowPre}
	if r.empty() {
		return span{}, false
	}
	return r, true
}

// union merges s and o into one span, assuming they overlap or touch.
// The result's allowPre is the OR of the inputs': a candidate
// satisfying either original atom belongs in the union.
func (s span) union(o span) span {
	lo, loOpen := s.lo, s.loOpen
	if cmpBound(o.loBound(), s.loBound()) < 0 {
		lo, loOpen = o.lo, o.loOpen
	}
	var hi Version
	var hiOpen, hiInf bool
	switch {
	case s.hiInf || o.hiInf:
		hiInf = true
	default:
		if c := cmpVersionOpen(s.hi, s.hiOpen, o.hi, o.hiOpen); c >= 0 {
			hi, hiOpen = s.hi, s.hiOpen
		} else {
			hi, hiOpen = o.hi, o.hiOpen
		}
	}
	return span{lo: lo, loOpen: loOpen, hi: hi, hiOpen: hiOpen, hiInf: hiInf, allowPre: s.allowPre || o.allowPre}
}
