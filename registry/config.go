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

// Package registry builds and decodes requests against the Hex API and
// repository CDN: key management, ownership, publishing, docs, release
// retirement, and package/tarball downloads, plus a Fetcher that feeds
// the resolve package directly.
package registry

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the set of endpoints and credentials every request in this
// package is built against.
type Config struct {
	// APIBase is the Hex API root, e.g. "https://hex.pm/api/".
	APIBase string
	// RepositoryBase is the repository CDN root, e.g. "https://repo.hex.pm/".
	RepositoryBase string
	// PublicKeyPEM verifies signed repository payloads (see verify.Payload).
	PublicKeyPEM []byte
	// APIKey authenticates write operations; left empty for read-only use.
	APIKey string
	// UserAgent is sent on every request as "<UserAgent>".
	UserAgent string
}

// DefaultConfig returns the public Hex registry's endpoints with no
// credentials configured.
func DefaultConfig() Config {
	return Config{
		APIBase:        "https://hex.pm/api/",
		RepositoryBase: "https://repo.hex.pm/",
		UserAgent:      "hexpm-go (0.1.0)",
	}
}

// LoadConfig reads configuration from environment variables prefixed
// HEXPM_ (and, if cfgFile is non-empty, that file), overlaying
// DefaultConfig. Recognised keys: api_base, repository_base, api_key,
// user_agent, public_key_file.
func LoadConfig(cfgFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HEXPM")
	v.AutomaticEnv()
	v.SetDefault("api_base", "https://hex.pm/api/")
	v.SetDefault("repository_base", "https://repo.hex.pm/")
	v.SetDefault("user_agent", "hexpm-go (0.1.0)")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("registry: reading config %q: %w", cfgFile, err)
		}
	}

	cfg := Config{
		APIBase:        v.GetString("api_base"),
		RepositoryBase: v.GetString("repository_base"),
		APIKey:         v.GetString("api_key"),
		UserAgent:      v.GetString("user_agent"),
	}

	if keyFile := v.GetString("public_key_file"); keyFile != "" {
		pem, err := os.ReadFile(keyFile)
		if err != nil {
			return Config{}, fmt.Errorf("registry: reading public_key_file %q: %w", keyFile, err)
		}
		cfg.PublicKeyPEM = pem
	}
	return cfg, nil
}
