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

package registry

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gohex/hexpm/model"
)

// Fetcher adapts a Client into a model.Fetcher, the capability the
// resolve package's provider consumes: Fetch(name) retrieves, verifies
// and decodes a package's full release listing in one call.
type Fetcher struct {
	Client *Client
}

// NewFetcher returns a Fetcher backed by client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{Client: client}
}

// Fetch implements model.Fetcher.
func (f *Fetcher) Fetch(name string) (*model.Package, error) {
	req, err := f.Client.GetPackageRequest(name, f.Client.cfg.APIKey)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: fetching %q: %w", name, err)
	}
	pkg, err := f.Client.GetPackageResponse(resp)
	if err != nil {
		return nil, err
	}
	log.Info().Str("package", name).Int("releases", len(pkg.Releases)).Msg("fetched package")
	return pkg, nil
}

// FetchTarball downloads and SHA-256-verifies one release's tarball.
func (f *Fetcher) FetchTarball(name, version string, checksum []byte) ([]byte, error) {
	req, err := f.Client.GetPackageTarballRequest(name, version, f.Client.cfg.APIKey)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: fetching tarball %s-%s: %w", name, version, err)
	}
	return f.Client.GetPackageTarballResponse(resp, checksum)
}

var _ model.Fetcher = (*Fetcher)(nil)
