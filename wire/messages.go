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

// Package wire decodes and encodes the repository CDN's protobuf
// messages: the outer Signed envelope, the Versions index, and a
// package's Release/Dependency/RetirementStatus tree. The wire formats
// are defined externally by the registry (see registry-v2.md) and
// treated here as opaque message shapes; rather than depend on
// generated protoc-gen-go bindings for schemas this module does not
// own, the messages are (de)serialised directly against the wire
// format using google.golang.org/protobuf/encoding/protowire.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Signed is the outer envelope every repository resource is wrapped in:
// the signature covers the raw bytes of payload.
type Signed struct {
	Payload   []byte
	Signature []byte
}

// Marshal encodes s to its wire representation.
func (s *Signed) Marshal() []byte {
	var b []byte
	if len(s.Payload) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, s.Payload)
	}
	if len(s.Signature) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, s.Signature)
	}
	return b
}

// UnmarshalSigned decodes a Signed message from its wire bytes.
func UnmarshalSigned(b []byte) (*Signed, error) {
	s := &Signed{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Payload = append([]byte(nil), v...)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Signature = append([]byte(nil), v...)
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return s, nil
}

// VersionsPackage is one entry of a Versions index: a package name and
// the versions it has published (and, separately, retired).
type VersionsPackage struct {
	Name     string
	Versions []string
	Retired  []string
}

// Versions is the repository-wide package/version index served at
// GET /versions.
type Versions struct {
	Packages []VersionsPackage
}

// UnmarshalVersions decodes a Versions message from its wire bytes.
func UnmarshalVersions(b []byte) (*Versions, error) {
	v := &Versions{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			msg, n, err := consumeEmbedded(b)
			if err != nil {
				return nil, err
			}
			p, err := unmarshalVersionsPackage(msg)
			if err != nil {
				return nil, err
			}
			v.Packages = append(v.Packages, p)
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return v, nil
}

func unmarshalVersionsPackage(b []byte) (VersionsPackage, error) {
	p := VersionsPackage{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return VersionsPackage{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			s, n, err := consumeString(b)
			if err != nil {
				return VersionsPackage{}, err
			}
			p.Name = s
			b = b[n:]
		case 2:
			s, n, err := consumeString(b)
			if err != nil {
				return VersionsPackage{}, err
			}
			p.Versions = append(p.Versions, s)
			b = b[n:]
		case 3:
			s, n, err := consumeString(b)
			if err != nil {
				return VersionsPackage{}, err
			}
			p.Retired = append(p.Retired, s)
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return VersionsPackage{}, err
			}
			b = b[n:]
		}
	}
	return p, nil
}

// RetirementReason classifies why a release was retired.
type RetirementReason int32

const (
	RetiredOther RetirementReason = iota
	RetiredInvalid
	RetiredSecurity
	RetiredDeprecated
	RetiredRenamed
)

// RetirementStatus carries why, and in what words, a release was
// retired.
type RetirementStatus struct {
	Reason  RetirementReason
	Message string
}

// Dependency is one entry of a release's requirement map, as carried on
// the wire (before the requirement text has been compiled to a Range).
type Dependency struct {
	Package     string
	Requirement string
	Optional    bool
	App         string
	Repository  string
}

// Release is one version of a Package as carried on the wire.
type Release struct {
	Version      string
	Dependencies []Dependency
	Checksum     []byte
	Retired      *RetirementStatus
}

// Package is the repository's full metadata for one package name.
type Package struct {
	Name       string
	Repository string
	Releases   []Release
}

// UnmarshalPackage decodes a Package message from its wire bytes.
func UnmarshalPackage(b []byte) (*Package, error) {
	p := &Package{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			s, n, err := consumeString(b)
			if err != nil {
				return nil, err
			}
			p.Name = s
			b = b[n:]
		case 2:
			msg, n, err := consumeEmbedded(b)
			if err != nil {
				return nil, err
			}
			r, err := unmarshalRelease(msg)
			if err != nil {
				return nil, err
			}
			p.Releases = append(p.Releases, r)
			b = b[n:]
		case 3:
			s, n, err := consumeString(b)
			if err != nil {
				return nil, err
			}
			p.Repository = s
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return p, nil
}

func unmarshalRelease(b []byte) (Release, error) {
	r := Release{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Release{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			s, n, err := consumeString(b)
			if err != nil {
				return Release{}, err
			}
			r.Version = s
			b = b[n:]
		case 2:
			msg, n, err := consumeEmbedded(b)
			if err != nil {
				return Release{}, err
			}
			d, err := unmarshalDependency(msg)
			if err != nil {
				return Release{}, err
			}
			r.Dependencies = append(r.Dependencies, d)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Release{}, protowire.ParseError(n)
			}
			r.Checksum = append([]byte(nil), v...)
			b = b[n:]
		case 4:
			msg, n, err := consumeEmbedded(b)
			if err != nil {
				return Release{}, err
			}
			s, err := unmarshalRetirementStatus(msg)
			if err != nil {
				return Release{}, err
			}
			r.Retired = &s
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return Release{}, err
			}
			b = b[n:]
		}
	}
	return r, nil
}

func unmarshalDependency(b []byte) (Dependency, error) {
	d := Dependency{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Dependency{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			s, n, err := consumeString(b)
			if err != nil {
				return Dependency{}, err
			}
			d.Package = s
			b = b[n:]
		case 2:
			s, n, err := consumeString(b)
			if err != nil {
				return Dependency{}, err
			}
			d.Requirement = s
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Dependency{}, protowire.ParseError(n)
			}
			d.Optional = v != 0
			b = b[n:]
		case 4:
			s, n, err := consumeString(b)
			if err != nil {
				return Dependency{}, err
			}
			d.App = s
			b = b[n:]
		case 5:
			s, n, err := consumeString(b)
			if err != nil {
				return Dependency{}, err
			}
			d.Repository = s
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return Dependency{}, err
			}
			b = b[n:]
		}
	}
	return d, nil
}

func unmarshalRetirementStatus(b []byte) (RetirementStatus, error) {
	s := RetirementStatus{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return RetirementStatus{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return RetirementStatus{}, protowire.ParseError(n)
			}
			s.Reason = RetirementReason(v)
			b = b[n:]
		case 2:
			str, n, err := consumeString(b)
			if err != nil {
				return RetirementStatus{}, err
			}
			s.Message = str
			b = b[n:]
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return RetirementStatus{}, err
			}
			b = b[n:]
		}
	}
	return s, nil
}

// Marshal encodes v to its wire representation.
func (v *Versions) Marshal() []byte {
	var b []byte
	for _, p := range v.Packages {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, p.marshal())
	}
	return b
}

func (p *VersionsPackage) marshal() []byte {
	var b []byte
	if p.Name != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, p.Name)
	}
	for _, ver := range p.Versions {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, ver)
	}
	for _, ver := range p.Retired {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, ver)
	}
	return b
}

// Marshal encodes p to its wire representation.
func (p *Package) Marshal() []byte {
	var b []byte
	if p.Name != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, p.Name)
	}
	for _, r := range p.Releases {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, r.marshal())
	}
	if p.Repository != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, p.Repository)
	}
	return b
}

func (r *Release) marshal() []byte {
	var b []byte
	if r.Version != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, r.Version)
	}
	for _, d := range r.Dependencies {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, d.marshal())
	}
	if len(r.Checksum) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Checksum)
	}
	if r.Retired != nil {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Retired.marshal())
	}
	return b
}

func (d *Dependency) marshal() []byte {
	var b []byte
	if d.Package != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, d.Package)
	}
	if d.Requirement != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, d.Requirement)
	}
	if d.Optional {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if d.App != "" {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, d.App)
	}
	if d.Repository != "" {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, d.Repository)
	}
	return b
}

func (s *RetirementStatus) marshal() []byte {
	var b []byte
	if s.Reason != RetiredOther {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Reason))
	}
	if s.Message != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, s.Message)
	}
	return b
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return string(v), n, nil
}

// consumeEmbedded reads a length-delimited sub-message and returns its
// raw bytes together with the number of bytes consumed from b
// (length prefix included).
func consumeEmbedded(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func skipField(b []byte, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("wire: invalid field value: %w", protowire.ParseError(n))
	}
	return n, nil
}
