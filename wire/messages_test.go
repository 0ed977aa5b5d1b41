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

package wire

import "testing"

func TestSignedRoundTrip(t *testing.T) {
	want := &Signed{Payload: []byte("hello world"), Signature: []byte{1, 2, 3, 4}}
	got, err := UnmarshalSigned(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalSigned: %v", err)
	}
	if string(got.Payload) != string(want.Payload) || string(got.Signature) != string(want.Signature) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestPackageRoundTrip(t *testing.T) {
	want := &Package{
		Name:       "ecto",
		Repository: "hexpm",
		Releases: []Release{
			{
				Version: "3.10.0",
				Dependencies: []Dependency{
					{Package: "telemetry", Requirement: "~> 1.0", Optional: false, App: "telemetry"},
					{Package: "decimal", Requirement: ">= 1.6.0 and < 3.0.0", Optional: true},
				},
				Checksum: []byte{0xde, 0xad, 0xbe, 0xef},
			},
			{
				Version:  "3.9.0",
				Checksum: []byte{0x01},
				Retired: &RetirementStatus{
					Reason:  RetiredSecurity,
					Message: "CVE-2023-0000",
				},
			},
		},
	}

	got, err := UnmarshalPackage(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalPackage: %v", err)
	}
	if got.Name != want.Name || got.Repository != want.Repository {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if len(got.Releases) != len(want.Releases) {
		t.Fatalf("got %d releases, want %d", len(got.Releases), len(want.Releases))
	}
	if got.Releases[0].Version != "3.10.0" || len(got.Releases[0].Dependencies) != 2 {
		t.Errorf("release[0] mismatch: %+v", got.Releases[0])
	}
	if got.Releases[0].Dependencies[1].Package != "decimal" || !got.Releases[0].Dependencies[1].Optional {
		t.Errorf("dependency[1] mismatch: %+v", got.Releases[0].Dependencies[1])
	}
	if got.Releases[1].Retired == nil || got.Releases[1].Retired.Reason != RetiredSecurity {
		t.Errorf("release[1] retirement mismatch: %+v", got.Releases[1].Retired)
	}
}

func TestVersionsRoundTrip(t *testing.T) {
	want := &Versions{Packages: []VersionsPackage{
		{Name: "ecto", Versions: []string{"3.9.0", "3.10.0"}, Retired: []string{"3.8.0"}},
		{Name: "phoenix", Versions: []string{"1.7.0"}},
	}}
	got, err := UnmarshalVersions(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalVersions: %v", err)
	}
	if len(got.Packages) != 2 || got.Packages[0].Name != "ecto" || len(got.Packages[0].Versions) != 2 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = appendUnknownVarintField(b, 99, 7)
	b = append(b, (&Signed{Payload: []byte("p"), Signature: []byte("s")}).Marshal()...)
	got, err := UnmarshalSigned(b)
	if err != nil {
		t.Fatalf("UnmarshalSigned with unknown leading field: %v", err)
	}
	if string(got.Payload) != "p" {
		t.Errorf("got payload %q, want %q", got.Payload, "p")
	}
}

func appendUnknownVarintField(b []byte, num int, v uint64) []byte {
	// Minimal hand-rolled varint tag+value for a field number not
	// present in any real message, to exercise the skip-unknown path.
	tag := uint64(num)<<3 | 0 // wire type 0 = varint
	b = appendVarint(b, tag)
	return appendVarint(b, v)
}

func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}
