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

import "sort"

// set is a union of disjoint spans, kept sorted and merged (canon) after
// every operation so that Contains and equality checks never need to
// consider overlap.
type set struct {
	spans []span
}

func newSet(s span) set {
	if s.empty() {
		return set{}
	}
	return set{spans: []span{s}}
}

// canon sorts ss.spans by lower bound and merges any that overlap or are
// adjacent with compatible allowPre bits. Two touching spans with
// different allowPre bits are kept apart, since merging them would
// silently change which pre-release candidates the boundary matches.
func (ss set) canon() set {
	spans := make([]span, 0, len(ss.spans))
	for _, s := range ss.spans {
		if !s.empty() {
			spans = append(spans, s)
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		return cmpBound(spans[i].loBound(), spans[j].loBound()) < 0
	})
	var out []span
	for _, s := range spans {
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		last := &out[len(out)-1]
		if last.allowPre == s.allowPre && (last.overlaps(s) || last.adjacent(s)) {
			*last = last.union(s)
			continue
		}
		out = append(out, s)
	}
	return set{spans: out}
}

// union returns the set of versions matched by either ss or os.
func (ss set) union(os set) set {
	all := append(append([]span{}, ss.spans...), os.spans...)
	return set{spans: all}.canon()
}

// intersect returns the set of versions matched by both ss and os.
func (ss set) intersect(os set) set {
	var out []span
	for _, a := range ss.spans {
		for _, b := range os.spans {
			if r, ok := a.intersect(b); ok {
				out = append(out, r)
			}
		}
	}
	return set{spans: out}.canon()
}

// contains reports whether v is matched by any span in ss.
func (ss set) contains(v Version) bool {
	for _, s := range ss.spans {
		if s.contains(v) {
			return true
		}
	}
	return false
}

func (ss set) empty() bool { return len(ss.spans) == 0 }
