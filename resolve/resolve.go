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

/*
Package resolve implements a PubGrub-style dependency resolver over the
Hex registry data model.

A resolve starts from a synthetic root: the caller's direct requirements,
refined by whatever versions are already locked (e.g. from an existing
lockfile). Resolve then repeatedly asks a Fetcher-backed provider to pick
a version for the highest-priority unresolved package, pulls in that
version's own dependency edges, and backtracks to the next candidate
whenever a choice turns out to be inconsistent with one made earlier.
*/
package resolve

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/gohex/hexpm/model"
	"github.com/gohex/hexpm/semver"
)

// IncompatibleLockedVersionError reports that a root requirement could
// not be satisfied by a package's locked version.
type IncompatibleLockedVersionError struct {
	Package     string
	Requirement semver.Range
	Locked      semver.Version
}

func (e *IncompatibleLockedVersionError) Error() string {
	return fmt.Sprintf("%s is specified with the requirement %q, but it is locked to %s, which is incompatible",
		e.Package, e.Requirement.String(), e.Locked.String())
}

// ResolutionError wraps the underlying failure (an unsatisfiable
// requirement, a fetch error, a retired release) from a failed Resolve.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string { return fmt.Sprintf("dependency resolution failed: %v", e.Err) }
func (e *ResolutionError) Unwrap() error  { return e.Err }

// Resolve computes a consistent set of package versions satisfying
// rootRequirements, treating the entries of locked as already-decided
// versions that must not move. It returns a map from package name to
// resolved version, containing every package reachable from the root's
// dependency graph except the synthetic root itself.
func Resolve(fetcher model.Fetcher, rootRequirements map[string]semver.Range, locked map[string]semver.Version) (map[string]semver.Version, error) {
	requirements, err := synthesizeRoot(rootRequirements, locked)
	if err != nil {
		return nil, err
	}

	p := newProvider(fetcher, locked)

	pending := make(map[string]bool, len(requirements))
	for name := range requirements {
		pending[name] = true
	}

	decided, err := solve(p, requirements, map[string]semver.Version{}, pending)
	if err != nil {
		return nil, &ResolutionError{Err: err}
	}
	return decided, nil
}

// synthesizeRoot builds the root's dependency requirement set: every
// locked package is pinned to its exact locked version, and every root
// requirement either introduces a new (unlocked) dependency or is
// checked for compatibility against an existing lock.
func synthesizeRoot(rootRequirements map[string]semver.Range, locked map[string]semver.Version) (map[string]semver.Range, error) {
	requirements := make(map[string]semver.Range, len(locked)+len(rootRequirements))
	for name, v := range locked {
		requirements[name] = semver.Exact(v)
	}

	var errs *multierror.Error
	for name, r := range rootRequirements {
		lockedVersion, isLocked := locked[name]
		if !isLocked {
			requirements[name] = r
			continue
		}
		if !r.Contains(lockedVersion) {
			errs = multierror.Append(errs, &IncompatibleLockedVersionError{
				Package:     name,
				Requirement: r,
				Locked:      lockedVersion,
			})
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return requirements, nil
}

// sortedNames returns the keys of m in ascending order, used wherever a
// map must be iterated deterministically (priority tie-breaking in
// pickNext).
func sortedNames(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
