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

package model

import (
	"testing"

	"github.com/gohex/hexpm/wire"
)

func TestDecodePackage(t *testing.T) {
	w := &wire.Package{
		Name:       "phoenix",
		Repository: "hexpm",
		Releases: []wire.Release{
			{
				Version: "1.7.0",
				Dependencies: []wire.Dependency{
					{Package: "plug", Requirement: "~> 1.14"},
					{Package: "jason", Requirement: ">= 1.0.0 and < 2.0.0", Optional: true},
				},
				Checksum: []byte{0xde, 0xad},
			},
			{
				Version: "1.8.0-rc.0",
				Retired: &wire.RetirementStatus{Reason: wire.RetiredSecurity, Message: "CVE-xxxx"},
			},
		},
	}

	pkg, err := DecodePackage(w)
	if err != nil {
		t.Fatalf("DecodePackage: %v", err)
	}
	if pkg.Name != "phoenix" || pkg.Repository != "hexpm" {
		t.Fatalf("unexpected package identity: %+v", pkg)
	}
	if len(pkg.Releases) != 2 {
		t.Fatalf("got %d releases, want 2", len(pkg.Releases))
	}

	first := pkg.Releases[0]
	if first.Version.String() != "1.7.0" {
		t.Errorf("version = %s, want 1.7.0", first.Version)
	}
	if first.IsRetired() || first.IsPre() {
		t.Errorf("first release should be neither retired nor pre-release: %+v", first)
	}
	plug, ok := first.Requirements["plug"]
	if !ok {
		t.Fatal("missing plug dependency")
	}
	if !plug.Requirement.Any() {
		t.Error("plug requirement should be satisfiable by some version")
	}
	jason, ok := first.Requirements["jason"]
	if !ok || !jason.Optional {
		t.Errorf("jason dependency missing or not optional: %+v", jason)
	}

	second := pkg.Releases[1]
	if !second.IsPre() {
		t.Errorf("release %s should be a pre-release", second.Version)
	}
	if !second.IsRetired() || second.Retired.Reason != RetiredSecurity {
		t.Errorf("release should be retired for security, got %+v", second.Retired)
	}
}

func TestDecodePackageRejectsBadVersion(t *testing.T) {
	w := &wire.Package{
		Name:     "broken",
		Releases: []wire.Release{{Version: "not-a-version"}},
	}
	if _, err := DecodePackage(w); err == nil {
		t.Fatal("expected an error for an unparsable release version")
	}
}

func TestDecodePackageRejectsBadRequirement(t *testing.T) {
	w := &wire.Package{
		Name: "broken",
		Releases: []wire.Release{{
			Version:      "1.0.0",
			Dependencies: []wire.Dependency{{Package: "dep", Requirement: "not a requirement (("}},
		}},
	}
	if _, err := DecodePackage(w); err == nil {
		t.Fatal("expected an error for an unparsable dependency requirement")
	}
}
