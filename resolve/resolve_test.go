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

package resolve

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gohex/hexpm/model"
	"github.com/gohex/hexpm/semver"
)

// fakeFetcher is an in-memory model.Fetcher built directly from
// releaseSpecs, for exercising the solver without the registry package.
type fakeFetcher struct {
	packages map[string]*model.Package
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{packages: make(map[string]*model.Package)}
}

// releaseSpec describes one release to add to the fake registry:
// version, and a map of dependency name to requirement string.
type releaseSpec struct {
	version string
	deps    map[string]string
	retired *model.RetirementStatus
}

func (f *fakeFetcher) add(name string, specs ...releaseSpec) {
	pkg, ok := f.packages[name]
	if !ok {
		pkg = &model.Package{Name: name}
		f.packages[name] = pkg
	}
	for _, s := range specs {
		v, err := semver.Parse(s.version)
		if err != nil {
			panic(fmt.Sprintf("bad test version %q: %v", s.version, err))
		}
		reqs := make(map[string]model.Dependency, len(s.deps))
		for dep, spec := range s.deps {
			r, err := semver.NewRange(spec)
			if err != nil {
				panic(fmt.Sprintf("bad test requirement %q: %v", spec, err))
			}
			reqs[dep] = model.Dependency{Requirement: r}
		}
		pkg.Releases = append(pkg.Releases, model.Release{
			Version:      v,
			Requirements: reqs,
			Retired:      s.retired,
		})
	}
}

func (f *fakeFetcher) Fetch(name string) (*model.Package, error) {
	pkg, ok := f.packages[name]
	if !ok {
		return nil, fmt.Errorf("no such package %q", name)
	}
	return pkg, nil
}

func mustRange(t *testing.T, spec string) semver.Range {
	t.Helper()
	r, err := semver.NewRange(spec)
	if err != nil {
		t.Fatalf("NewRange(%q): %v", spec, err)
	}
	return r
}

func mustVersion(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

// Scenario 1: a single direct dependency with one matching release
// resolves to that release.
func TestResolveSimple(t *testing.T) {
	f := newFakeFetcher()
	f.add("a", releaseSpec{version: "1.0.0"})

	got, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, "~> 1.0")}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["a"].String() != "1.0.0" {
		t.Errorf("a = %v, want 1.0.0", got["a"])
	}
}

// Scenario 2: a diamond, where two packages both depend on a third with
// overlapping but distinct ranges, resolves to a version satisfying
// both (the intersection of the two requirement ranges).
func TestResolveDiamond(t *testing.T) {
	f := newFakeFetcher()
	f.add("top1", releaseSpec{version: "1.0.0", deps: map[string]string{"shared": ">= 1.0.0 and < 2.0.0"}})
	f.add("top2", releaseSpec{version: "1.0.0", deps: map[string]string{"shared": ">= 1.1.0"}})
	f.add("shared",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "1.1.0"},
		releaseSpec{version: "1.2.0"},
	)

	got, err := Resolve(f, map[string]semver.Range{
		"top1": mustRange(t, "~> 1.0"),
		"top2": mustRange(t, "~> 1.0"),
	}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["shared"].String() != "1.2.0" {
		t.Errorf("shared = %v, want 1.2.0 (max within the intersection)", got["shared"])
	}
}

// Scenario 3: when a range admits both pre-release and non-pre-release
// candidates, resolution prefers the maximum non-pre-release.
func TestResolvePrefersNonPreRelease(t *testing.T) {
	f := newFakeFetcher()
	f.add("a",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "1.1.0-rc1"},
	)

	got, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, ">= 1.0.0-rc1")}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["a"].String() != "1.0.0" {
		t.Errorf("a = %v, want 1.0.0 (non-pre preferred over 1.1.0-rc1)", got["a"])
	}
}

// Scenario 3b: when only pre-release candidates match, resolution falls
// back to the maximum pre-release.
func TestResolveFallsBackToPreRelease(t *testing.T) {
	f := newFakeFetcher()
	f.add("a",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "2.0.0-rc1"},
		releaseSpec{version: "2.0.0-rc2"},
	)

	got, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, ">= 2.0.0-rc1 and < 2.0.0")}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["a"].String() != "2.0.0-rc2" {
		t.Errorf("a = %v, want 2.0.0-rc2", got["a"])
	}
}

// Scenario 4: a locked version pins a package even though a newer
// release would otherwise be preferred.
func TestResolveHonorsLockedVersion(t *testing.T) {
	f := newFakeFetcher()
	f.add("a",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "1.1.0"},
	)

	locked := map[string]semver.Version{"a": mustVersion(t, "1.0.0")}
	got, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, "~> 1.0")}, locked)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["a"].String() != "1.0.0" {
		t.Errorf("a = %v, want locked 1.0.0", got["a"])
	}
}

// Scenario 5: an incompatible lock is rejected before any solving
// begins.
func TestResolveIncompatibleLockedVersion(t *testing.T) {
	f := newFakeFetcher()
	f.add("a", releaseSpec{version: "1.0.0"}, releaseSpec{version: "2.0.0"})

	locked := map[string]semver.Version{"a": mustVersion(t, "1.0.0")}
	_, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, "~> 2.0")}, locked)
	if err == nil {
		t.Fatal("Resolve succeeded, want IncompatibleLockedVersionError")
	}
	var target *IncompatibleLockedVersionError
	if !errors.As(err, &target) {
		t.Fatalf("Resolve error = %v, want *IncompatibleLockedVersionError", err)
	}
	if target.Package != "a" {
		t.Errorf("error package = %q, want %q", target.Package, "a")
	}
}

// Scenario 6: a retired release is skipped during resolution unless the
// package is locked to precisely that version.
func TestResolveSkipsRetiredUnlessLocked(t *testing.T) {
	f := newFakeFetcher()
	f.add("a",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "1.1.0", retired: &model.RetirementStatus{Reason: model.RetiredSecurity, Message: "CVE"}},
	)

	got, err := Resolve(f, map[string]semver.Range{"a": mustRange(t, "~> 1.0")}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["a"].String() != "1.0.0" {
		t.Errorf("a = %v, want 1.0.0 (1.1.0 is retired)", got["a"])
	}

	locked := map[string]semver.Version{"a": mustVersion(t, "1.1.0")}
	got, err = Resolve(f, map[string]semver.Range{"a": mustRange(t, "~> 1.0")}, locked)
	if err != nil {
		t.Fatalf("Resolve with lock on retired release: %v", err)
	}
	if got["a"].String() != "1.1.0" {
		t.Errorf("a = %v, want locked retired 1.1.0", got["a"])
	}
}

// Conflicting requirements with no satisfying version fail resolution.
func TestResolveUnsatisfiable(t *testing.T) {
	f := newFakeFetcher()
	f.add("top1", releaseSpec{version: "1.0.0", deps: map[string]string{"shared": "~> 1.0"}})
	f.add("top2", releaseSpec{version: "1.0.0", deps: map[string]string{"shared": "~> 2.0"}})
	f.add("shared",
		releaseSpec{version: "1.0.0"},
		releaseSpec{version: "2.0.0"},
	)

	_, err := Resolve(f, map[string]semver.Range{
		"top1": mustRange(t, "~> 1.0"),
		"top2": mustRange(t, "~> 1.0"),
	}, nil)
	if err == nil {
		t.Fatal("Resolve succeeded, want an error")
	}
	var target *ResolutionError
	if !errors.As(err, &target) {
		t.Fatalf("Resolve error = %v (%T), want *ResolutionError", err, err)
	}
}
