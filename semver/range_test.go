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

func mustParse(t *testing.T, s string) Version {
	t.Helper()
	v, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		spec  string
		yes   []string
		no    []string
	}{
		{
			spec: "1.2.3",
			yes:  []string{"1.2.3"},
			no:   []string{"1.2.4", "1.2.2", "1.2.3-rc1"},
		},
		{
			spec: "== 1.2.3",
			yes:  []string{"1.2.3"},
			no:   []string{"1.2.2"},
		},
		{
			spec: "!= 1.2.3",
			yes:  []string{"1.2.2", "1.2.4"},
			no:   []string{"1.2.3"},
		},
		{
			spec: "> 1.2.3",
			yes:  []string{"1.2.4", "2.0.0"},
			no:   []string{"1.2.3", "1.2.2"},
		},
		{
			spec: ">= 1.2.3",
			yes:  []string{"1.2.3", "1.2.4"},
			no:   []string{"1.2.2"},
		},
		{
			spec: "< 2.0.0",
			yes:  []string{"1.9.9"},
			no:   []string{"2.0.0", "2.0.0-rc1", "2.0.1"},
		},
		{
			spec: "<= 2.0.0",
			yes:  []string{"2.0.0", "1.9.9"},
			no:   []string{"2.0.1"},
		},
		{
			spec: ">= 1.0.0 and < 2.0.0",
			yes:  []string{"1.0.0", "1.9.9"},
			no:   []string{"0.9.9", "2.0.0", "2.0.0-rc1"},
		},
		{
			spec: "1.0.0 or 2.0.0",
			yes:  []string{"1.0.0", "2.0.0"},
			no:   []string{"1.5.0", "3.0.0"},
		},
		{
			spec: "~> 2.1.2",
			yes:  []string{"2.1.2", "2.1.9"},
			no:   []string{"2.1.1", "2.2.0"},
		},
		{
			spec: "~> 2.1",
			yes:  []string{"2.1.0", "2.9.9"},
			no:   []string{"2.0.9", "3.0.0"},
		},
		{
			spec: ">= 1.0.0-rc1 and < 1.0.0",
			yes:  []string{"1.0.0-rc1", "1.0.0-rc2"},
			no:   []string{"1.0.0", "0.9.0"},
		},
		{
			spec: "== 1.2",
			yes:  []string{"1.2.0"},
			no:   []string{"1.2.1", "1.1.9"},
		},
		{
			spec: "> 1 and < 2 or == 4.5.2",
			yes:  []string{"1.9.9", "4.5.2"},
			no:   []string{"1.0.0", "2.0.0", "4.5.3"},
		},
	}
	for _, tt := range tests {
		r, err := NewRange(tt.spec)
		if err != nil {
			t.Fatalf("NewRange(%q): %v", tt.spec, err)
		}
		for _, s := range tt.yes {
			if !r.Contains(mustParse(t, s)) {
				t.Errorf("NewRange(%q).Contains(%q) = false, want true", tt.spec, s)
			}
		}
		for _, s := range tt.no {
			if r.Contains(mustParse(t, s)) {
				t.Errorf("NewRange(%q).Contains(%q) = true, want false", tt.spec, s)
			}
		}
	}
}

func TestRangeRejectsInvalid(t *testing.T) {
	for _, spec := range []string{
		"",
		"and 1.0.0",
		"1.0.0 and",
		"~> 1",
		">= 1.0.0 and",
		"1.0.0 xor 2.0.0",
	} {
		if _, err := NewRange(spec); err == nil {
			t.Errorf("NewRange(%q) succeeded, want error", spec)
		}
	}
}
