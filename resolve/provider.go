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
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/gohex/hexpm/model"
	"github.com/gohex/hexpm/semver"
)

// ErrVersionNotFound means a package has no release matching a version
// the solver tried to select.
var ErrVersionNotFound = errors.New("resolve: no such release")

// ErrRetired means the solver tried to select a release that has been
// retired, and the package is not locked to exactly that version.
var ErrRetired = errors.New("resolve: release is retired")

// provider is the PubGrub "dependency provider" for this resolve: a
// Fetcher wrapped with a per-package cache of its releases (sorted once,
// fetched at most once), plus the set of versions the caller locked.
type provider struct {
	fetcher model.Fetcher
	locked  map[string]semver.Version
	cache   map[string]*cachedPackage
}

// cachedPackage holds one package's releases, sorted so that
// candidates can simply scan in preference order:
// non-pre-release versions first (descending), then pre-releases
// (descending).
type cachedPackage struct {
	releases  []model.Release
	byVersion map[string]*model.Release
}

func newProvider(fetcher model.Fetcher, locked map[string]semver.Version) *provider {
	return &provider{
		fetcher: fetcher,
		locked:  locked,
		cache:   make(map[string]*cachedPackage),
	}
}

// ensureFetched returns the cached releases for name, fetching and
// sorting them on first use.
func (p *provider) ensureFetched(name string) (*cachedPackage, error) {
	if cp, ok := p.cache[name]; ok {
		return cp, nil
	}
	pkg, err := p.fetcher.Fetch(name)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", name, err)
	}
	releases := make([]model.Release, len(pkg.Releases))
	copy(releases, pkg.Releases)
	sort.Slice(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		if a.IsPre() != b.IsPre() {
			return !a.IsPre() // non-pre before pre
		}
		return a.Version.Compare(b.Version) > 0 // descending within each group
	})
	byVersion := make(map[string]*model.Release, len(releases))
	for i := range releases {
		byVersion[releases[i].Version.String()] = &releases[i]
	}
	cp := &cachedPackage{releases: releases, byVersion: byVersion}
	p.cache[name] = cp
	log.Debug().Str("package", name).Int("releases", len(releases)).Msg("fetched package")
	return cp, nil
}

// candidates returns every release of name matching r, in preference
// order: the maximum non-pre-release first, then decreasing
// non-pre-releases, then (only once those are exhausted) the maximum
// pre-release and decreasing pre-releases after it. Its first element
// is the version a PubGrub choose_version would pick; the rest let the
// solver fall back through alternatives when that choice leads to a
// conflict deeper in the graph.
func (p *provider) candidates(name string, r semver.Range) ([]semver.Version, error) {
	cp, err := p.ensureFetched(name)
	if err != nil {
		return nil, err
	}
	var out []semver.Version
	for _, rel := range cp.releases {
		if r.Contains(rel.Version) {
			out = append(out, rel.Version)
		}
	}
	return out, nil
}

// getDependencies returns the requirement ranges a specific release of
// name declares, or an error if the version does not exist or is
// retired and not the one the caller has locked.
func (p *provider) getDependencies(name string, v semver.Version) (map[string]semver.Range, error) {
	cp, err := p.ensureFetched(name)
	if err != nil {
		return nil, err
	}
	rel, ok := cp.byVersion[v.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, name, v)
	}
	if rel.IsRetired() {
		lockedVersion, isLocked := p.locked[name]
		if !isLocked || !lockedVersion.Equal(v) {
			return nil, fmt.Errorf("%w: %s@%s (%s: %s)", ErrRetired, name, v, rel.Retired.Reason, rel.Retired.Message)
		}
	}
	deps := make(map[string]semver.Range, len(rel.Requirements))
	for dep, d := range rel.Requirements {
		deps[dep] = d.Requirement
	}
	return deps, nil
}

// prioritize scores name for the solver's next-pick order: an unfetched
// package gets priority 0, the highest possible, so the solver fetches
// and narrows the search space before spending effort elsewhere. A
// fetched package's priority is its number of matching candidates, so
// packages with fewer remaining choices (and therefore less room to
// backtrack through) are decided first.
func (p *provider) prioritize(name string, r semver.Range) int {
	cp, ok := p.cache[name]
	if !ok {
		return 0
	}
	n := 0
	for _, rel := range cp.releases {
		if r.Contains(rel.Version) {
			n++
		}
	}
	return n
}
