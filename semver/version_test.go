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

import "testing"

func TestParseVersionRoundTrip(t *testing.T) {
	for _, s := range []string{
		"1.0.0",
		"0.0.0",
		"1.2.3-alpha",
		"1.2.3-alpha.1",
		"1.2.3-0.3.7",
		"1.2.3-x.7.z.92",
		"1.2.3+build",
		"1.2.3-beta+exp.sha.5114f85",
		"1.0.0-rc-1",
	} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if got := v.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseVersionRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"1",
		"1.2",
		"1.2.3.4",
		"01.2.3",
		"1.02.3",
		"1.2.03",
		"1.2.3-",
		"1.2.3+",
		"v1.2.3",
		"1.2.3-+build",
		"1.2.3-alpha..1",
	} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	// Ascending order per the Hex/SemVer precedence rules: a release
	// version is always greater than any of its own pre-releases.
	ordered := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}
	for i := 1; i < len(ordered); i++ {
		a, err := Parse(ordered[i-1])
		if err != nil {
			t.Fatalf("Parse(%q): %v", ordered[i-1], err)
		}
		b, err := Parse(ordered[i])
		if err != nil {
			t.Fatalf("Parse(%q): %v", ordered[i], err)
		}
		if c := a.Compare(b); c >= 0 {
			t.Errorf("Compare(%q, %q) = %d, want < 0", ordered[i-1], ordered[i], c)
		}
		if c := b.Compare(a); c <= 0 {
			t.Errorf("Compare(%q, %q) = %d, want > 0", ordered[i], ordered[i-1], c)
		}
	}
}

func TestVersionCompareIgnoresBuild(t *testing.T) {
	a, _ := Parse("1.0.0+build1")
	b, _ := Parse("1.0.0+build2")
	if !a.Equal(b) {
		t.Errorf("versions differing only in build metadata compared unequal: %v vs %v", a, b)
	}
}

func TestBumpPatch(t *testing.T) {
	v, _ := Parse("1.2.3")
	got := v.BumpPatch()
	want, _ := Parse("1.2.4")
	if !got.Equal(want) || got.IsPre() {
		t.Errorf("BumpPatch(1.2.3) = %v, want 1.2.4", got)
	}
}

func TestBump(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.2.3", "1.2.4"},
		{"1.2.3-1", "1.2.3-2"},
		{"1.2.3-alpha", "1.2.3-alpha1"},
		{"1.2.3-alpha1", "1.2.3-alpha2"},
		{"1.2.3-alpha.1", "1.2.3-alpha.2"},
		{"1.2.3-1.alpha", "1.2.3-1.alpha1"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		got := v.Bump()
		want, err := Parse(tt.want)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.want, err)
		}
		if !got.Equal(want) {
			t.Errorf("Bump(%q) = %q, want %q", tt.in, got.String(), tt.want)
		}
	}
}
