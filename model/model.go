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

// Package model holds the decoded, typed registry data the resolver and
// registry client operate on: the wire package turns bytes into
// strings, and model turns those strings into the semver.Version and
// semver.Range values the rest of the module actually computes with.
package model

import (
	"fmt"

	"github.com/gohex/hexpm/semver"
	"github.com/gohex/hexpm/wire"
)

// RetirementReason mirrors wire.RetirementReason; it is redeclared here
// (rather than aliased) so that the decoded domain model does not leak
// the wire package's encoding concerns into callers that only care
// about resolution and display.
type RetirementReason int

const (
	RetiredOther RetirementReason = iota
	RetiredInvalid
	RetiredSecurity
	RetiredDeprecated
	RetiredRenamed
)

func (r RetirementReason) String() string {
	switch r {
	case RetiredOther:
		return "other"
	case RetiredInvalid:
		return "invalid"
	case RetiredSecurity:
		return "security"
	case RetiredDeprecated:
		return "deprecated"
	case RetiredRenamed:
		return "renamed"
	default:
		return fmt.Sprintf("retirement_reason(%d)", int(r))
	}
}

// RetirementStatus records that a Release has been pulled from active
// circulation, with a reason and an optional human-readable message.
type RetirementStatus struct {
	Reason  RetirementReason
	Message string
}

// Dependency is one edge out of a Release: a requirement range on
// another package, plus the metadata the build tool (but not the
// resolver itself) needs to act on it.
type Dependency struct {
	Requirement semver.Range
	Optional    bool
	App         string
	Repository  string
}

// Release is one published version of a Package: its version, its
// dependency edges, and whatever retirement status applies.
type Release struct {
	Version      semver.Version
	Requirements map[string]Dependency
	Retired      *RetirementStatus
	Checksum     []byte
}

// IsRetired reports whether the release has been marked retired.
func (r Release) IsRetired() bool { return r.Retired != nil }

// IsPre reports whether the release's version carries a pre-release tag.
func (r Release) IsPre() bool { return r.Version.IsPre() }

// Package is a named, repository-scoped collection of Releases, as
// returned by the registry's package endpoint.
type Package struct {
	Name       string
	Repository string
	Releases   []Release
}

// Fetcher retrieves the full Package record for name, including every
// release and its dependency edges. Implementations typically wrap a
// registry HTTP client (see the registry package) with a decode step
// through verify.Payload and wire.UnmarshalPackage; DecodePackage below
// performs that last step.
type Fetcher interface {
	Fetch(name string) (*Package, error)
}

// DecodePackage converts a wire.Package (plain strings, as decoded off
// the protobuf envelope) into a model.Package (parsed versions and
// compiled requirement ranges), returning an error if any version or
// requirement literal fails to parse.
func DecodePackage(w *wire.Package) (*Package, error) {
	p := &Package{
		Name:       w.Name,
		Repository: w.Repository,
		Releases:   make([]Release, 0, len(w.Releases)),
	}
	for _, wr := range w.Releases {
		rel, err := decodeRelease(wr)
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", w.Name, err)
		}
		p.Releases = append(p.Releases, rel)
	}
	return p, nil
}

func decodeRelease(wr wire.Release) (Release, error) {
	v, err := semver.Parse(wr.Version)
	if err != nil {
		return Release{}, fmt.Errorf("release version %q: %w", wr.Version, err)
	}
	reqs := make(map[string]Dependency, len(wr.Dependencies))
	for _, wd := range wr.Dependencies {
		r, err := semver.NewRange(wd.Requirement)
		if err != nil {
			return Release{}, fmt.Errorf("dependency %q requirement %q: %w", wd.Package, wd.Requirement, err)
		}
		reqs[wd.Package] = Dependency{
			Requirement: r,
			Optional:    wd.Optional,
			App:         wd.App,
			Repository:  wd.Repository,
		}
	}
	rel := Release{
		Version:      v,
		Requirements: reqs,
		Checksum:     wr.Checksum,
	}
	if wr.Retired != nil {
		rel.Retired = &RetirementStatus{
			Reason:  RetirementReason(wr.Retired.Reason),
			Message: wr.Retired.Message,
		}
	}
	return rel, nil
}
