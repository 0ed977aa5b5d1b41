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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gohex/hexpm/model"
	"github.com/gohex/hexpm/verify"
	"github.com/gohex/hexpm/wire"
)

// Client builds and decodes requests against the Hex API and repository
// CDN using cfg's endpoints and credentials. It holds no state beyond
// cfg and an *http.Client, so it is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client. If httpClient is nil, http.DefaultClient
// is used.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient}
}

func (c *Client) apiRequest(method, pathSuffix string, apiKey string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(method, c.cfg.APIBase+pathSuffix, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("registry: building request: %w", err)
	}
	req.Header.Set("user-agent", c.cfg.UserAgent)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")
	if apiKey != "" {
		req.Header.Set("authorization", apiKey)
	}
	return req, nil
}

func (c *Client) repositoryRequest(method, pathSuffix, accept, apiKey string) (*http.Request, error) {
	req, err := http.NewRequest(method, c.cfg.RepositoryBase+pathSuffix, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: building request: %w", err)
	}
	req.Header.Set("user-agent", c.cfg.UserAgent)
	if accept != "" {
		req.Header.Set("accept", accept)
	}
	if apiKey != "" {
		req.Header.Set("authorization", apiKey)
	}
	return req, nil
}

// Do executes req with the Client's http.Client, logging the round
// trip at debug level.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("registry request")
	return c.http.Do(req)
}

// --- API keys ---

// CreateAPIKeyRequest builds a request that creates a Hex API key
// scoped to write access, authenticated with HTTP Basic credentials.
func (c *Client) CreateAPIKeyRequest(username, password, keyName string) (*http.Request, error) {
	body, _ := json.Marshal(map[string]any{
		"name": keyName,
		"permissions": []map[string]string{
			{"domain": "api", "resource": "write"},
		},
	})
	req, err := c.apiRequest(http.MethodPost, "keys", "", body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(username, password)
	return req, nil
}

// CreateAPIKeyResponse decodes the created key's secret.
func (c *Client) CreateAPIKeyResponse(resp *http.Response) (string, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusCreated:
		var out struct {
			Secret string `json:"secret"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("registry: decoding create-key response: %w", err)
		}
		return out.Secret, nil
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusUnauthorized:
		return "", ErrInvalidCredentials
	default:
		return "", unexpectedResponse(status, body)
	}
}

// RemoveAPIKeyRequest builds a request that deletes a named API key.
func (c *Client) RemoveAPIKeyRequest(keyName, apiKey string) (*http.Request, error) {
	return c.apiRequest(http.MethodDelete, "keys/"+keyName, apiKey, nil)
}

func (c *Client) RemoveAPIKeyResponse(resp *http.Response) error {
	return simpleStatusResponse(resp, http.StatusNoContent, http.StatusOK)
}

// ListKeysRequest builds a request listing every API key on the
// authenticated account.
func (c *Client) ListKeysRequest(apiKey string) (*http.Request, error) {
	return c.apiRequest(http.MethodGet, "keys", apiKey, nil)
}

// APIKeyInfo is one entry of a ListKeysResponse listing.
type APIKeyInfo struct {
	Name           string `json:"name"`
	AuthingKey     bool   `json:"authing_key"`
	PermissionsRaw []struct {
		Domain   string `json:"domain"`
		Resource string `json:"resource"`
	} `json:"permissions"`
	InsertedAt string `json:"inserted_at"`
	UpdatedAt  string `json:"updated_at"`
}

func (c *Client) ListKeysResponse(resp *http.Response) ([]APIKeyInfo, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var out []APIKeyInfo
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("registry: decoding list-keys response: %w", err)
		}
		return out, nil
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized:
		return nil, ErrInvalidApiKey
	default:
		return nil, unexpectedResponse(status, body)
	}
}

// --- Release retirement ---

// RetireReleaseRequest builds a request that marks a release retired.
func (c *Client) RetireReleaseRequest(pkg, version string, reason model.RetirementReason, message, apiKey string) (*http.Request, error) {
	if err := validatePackageAndVersion(pkg, version); err != nil {
		return nil, err
	}
	body, _ := json.Marshal(map[string]any{
		"reason":  reason.String(),
		"message": message,
	})
	return c.apiRequest(http.MethodPost, fmt.Sprintf("packages/%s/releases/%s/retire", pkg, version), apiKey, body)
}

func (c *Client) RetireReleaseResponse(resp *http.Response) error {
	return simpleStatusResponse(resp, http.StatusNoContent, http.StatusOK)
}

// UnretireReleaseRequest builds a request that clears a release's
// retirement status.
func (c *Client) UnretireReleaseRequest(pkg, version, apiKey string) (*http.Request, error) {
	if err := validatePackageAndVersion(pkg, version); err != nil {
		return nil, err
	}
	return c.apiRequest(http.MethodDelete, fmt.Sprintf("packages/%s/releases/%s/retire", pkg, version), apiKey, nil)
}

func (c *Client) UnretireReleaseResponse(resp *http.Response) error {
	return simpleStatusResponse(resp, http.StatusNoContent, http.StatusOK)
}

// --- Repository reads ---

// GetPackageRequest builds a request for a package's signed metadata.
func (c *Client) GetPackageRequest(name, apiKey string) (*http.Request, error) {
	return c.repositoryRequest(http.MethodGet, "packages/"+name, "application/json", apiKey)
}

// GetPackageResponse verifies and decodes a GetPackageRequest response
// into a model.Package.
func (c *Client) GetPackageResponse(resp *http.Response) (*model.Package, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, unexpectedResponse(status, body)
	}
	return c.decodePackagePayload(body)
}

func (c *Client) decodePackagePayload(body []byte) (*model.Package, error) {
	payload, err := verify.Payload(body, c.cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	w, err := wire.UnmarshalPackage(payload)
	if err != nil {
		return nil, fmt.Errorf("registry: decoding package protobuf: %w", err)
	}
	return model.DecodePackage(w)
}

// GetRepositoryVersionsRequest builds a request listing every package
// name and its versions known to the repository.
func (c *Client) GetRepositoryVersionsRequest(apiKey string) (*http.Request, error) {
	return c.repositoryRequest(http.MethodGet, "versions", "application/json", apiKey)
}

// GetRepositoryVersionsResponse decodes the versions listing into a
// map from package name to its known version strings.
func (c *Client) GetRepositoryVersionsResponse(resp *http.Response) (map[string][]string, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, unexpectedResponse(status, body)
	}
	payload, err := verify.Payload(body, c.cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	vs, err := wire.UnmarshalVersions(payload)
	if err != nil {
		return nil, fmt.Errorf("registry: decoding versions protobuf: %w", err)
	}
	out := make(map[string][]string, len(vs.Packages))
	for _, p := range vs.Packages {
		out[p.Name] = p.Versions
	}
	return out, nil
}

// --- Tarballs ---

// GetPackageTarballRequest builds a request to download one release's
// tarball.
func (c *Client) GetPackageTarballRequest(name, version, apiKey string) (*http.Request, error) {
	return c.repositoryRequest(http.MethodGet, fmt.Sprintf("tarballs/%s-%s.tar", name, version), "application/x-tar", apiKey)
}

// GetPackageTarballResponse verifies the downloaded bytes against
// checksum (the tarball's SHA-256 outer_checksum) and returns them.
func (c *Client) GetPackageTarballResponse(resp *http.Response, checksum []byte) ([]byte, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, unexpectedResponse(status, body)
	}
	out, err := verify.Checksum(body, checksum)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return out, nil
}

// --- Docs ---

// RemoveDocsRequest builds a request deleting a release's published docs.
func (c *Client) RemoveDocsRequest(pkg, version, apiKey string) (*http.Request, error) {
	if err := validatePackageAndVersion(pkg, version); err != nil {
		return nil, err
	}
	return c.apiRequest(http.MethodDelete, fmt.Sprintf("packages/%s/releases/%s/docs", pkg, version), apiKey, nil)
}

func (c *Client) RemoveDocsResponse(resp *http.Response) error {
	body, status, err := readBody(resp)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return ErrInvalidApiKey
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return unexpectedResponse(status, body)
	}
}

// PublishDocsRequest builds a request uploading a gzipped docs tarball.
func (c *Client) PublishDocsRequest(pkg, version string, gzippedTarball []byte, apiKey string) (*http.Request, error) {
	if err := validatePackageAndVersion(pkg, version); err != nil {
		return nil, err
	}
	req, err := c.apiRequest(http.MethodPost, fmt.Sprintf("packages/%s/releases/%s/docs", pkg, version), apiKey, gzippedTarball)
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-encoding", "x-gzip")
	req.Header.Set("content-type", "application/x-tar")
	return req, nil
}

func (c *Client) PublishDocsResponse(resp *http.Response) error {
	body, status, err := readBody(resp)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return ErrInvalidApiKey
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return unexpectedResponse(status, body)
	}
}

// --- Publish / revert ---

// PublishPackageRequest builds a request publishing a release tarball.
// replace controls the "?replace=" query flag the registry inspects
// when a release of the same version already exists.
func (c *Client) PublishPackageRequest(releaseTarball []byte, apiKey string, replace bool) (*http.Request, error) {
	req, err := c.apiRequest(http.MethodPost, fmt.Sprintf("publish?replace=%t", replace), apiKey, releaseTarball)
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-tar")
	return req, nil
}

// PublishPackageResponse decodes the publish outcome, distinguishing
// the two flavors of 422 the registry returns: a missing "--replace"
// acknowledgement in the body versus any other late-modification
// rejection.
func (c *Client) PublishPackageResponse(resp *http.Response) error {
	body, status, err := readBody(resp)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return ErrInvalidApiKey
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusUnprocessableEntity:
		if strings.Contains(string(body), "--replace") {
			return ErrNotReplacing
		}
		return ErrLateModification
	default:
		return unexpectedResponse(status, body)
	}
}

// RevertReleaseRequest builds a request deleting a just-published release.
func (c *Client) RevertReleaseRequest(pkg, version, apiKey string) (*http.Request, error) {
	if err := validatePackageAndVersion(pkg, version); err != nil {
		return nil, err
	}
	return c.apiRequest(http.MethodDelete, fmt.Sprintf("packages/%s/releases/%s", pkg, version), apiKey, nil)
}

func (c *Client) RevertReleaseResponse(resp *http.Response) error {
	return simpleStatusResponse(resp, http.StatusNoContent, http.StatusOK)
}

// --- Ownership ---

// OwnerLevel is the access level granted to a package owner.
type OwnerLevel int

const (
	OwnerLevelFull OwnerLevel = iota
	OwnerLevelMaintainer
)

func (l OwnerLevel) String() string {
	if l == OwnerLevelMaintainer {
		return "maintainer"
	}
	return "full"
}

// ListOwnersRequest builds a request listing a package's owners.
func (c *Client) ListOwnersRequest(pkg, apiKey string) (*http.Request, error) {
	return c.apiRequest(http.MethodGet, fmt.Sprintf("packages/%s/owners", pkg), apiKey, nil)
}

// OwnerInfo is one entry of a ListOwnersResponse listing.
type OwnerInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Level    string `json:"level"`
}

func (c *Client) ListOwnersResponse(resp *http.Response) ([]OwnerInfo, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var out []OwnerInfo
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("registry: decoding list-owners response: %w", err)
		}
		return out, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized:
		return nil, ErrInvalidApiKey
	case http.StatusForbidden:
		return nil, ErrForbidden
	default:
		return nil, unexpectedResponse(status, body)
	}
}

// AddOwnerRequest builds a request granting owner to a package.
func (c *Client) AddOwnerRequest(pkg, owner string, level OwnerLevel, apiKey string) (*http.Request, error) {
	body, _ := json.Marshal(map[string]any{
		"level":    level.String(),
		"transfer": false,
	})
	return c.apiRequest(http.MethodPut, fmt.Sprintf("packages/%s/owners/%s", pkg, owner), apiKey, body)
}

func (c *Client) AddOwnerResponse(resp *http.Response) error {
	return ownershipResponse(resp)
}

// TransferOwnerRequest builds a request transferring full ownership.
func (c *Client) TransferOwnerRequest(pkg, owner, apiKey string) (*http.Request, error) {
	body, _ := json.Marshal(map[string]any{
		"level":    OwnerLevelFull.String(),
		"transfer": true,
	})
	return c.apiRequest(http.MethodPut, fmt.Sprintf("packages/%s/owners/%s", pkg, owner), apiKey, body)
}

func (c *Client) TransferOwnerResponse(resp *http.Response) error {
	return ownershipResponse(resp)
}

// RemoveOwnerRequest builds a request revoking an owner.
func (c *Client) RemoveOwnerRequest(pkg, owner, apiKey string) (*http.Request, error) {
	return c.apiRequest(http.MethodDelete, fmt.Sprintf("packages/%s/owners/%s", pkg, owner), apiKey, nil)
}

func (c *Client) RemoveOwnerResponse(resp *http.Response) error {
	return ownershipResponse(resp)
}

func ownershipResponse(resp *http.Response) error {
	body, status, err := readBody(resp)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return ErrInvalidApiKey
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return unexpectedResponse(status, body)
	}
}

// --- Release metadata (JSON, unsigned) ---

// GetPackageReleaseRequest builds a request for one release's plain
// JSON metadata (distinct from the signed, protobuf-encoded package
// listing GetPackageRequest fetches).
func (c *Client) GetPackageReleaseRequest(name, version, apiKey string) (*http.Request, error) {
	return c.apiRequest(http.MethodGet, fmt.Sprintf("packages/%s/releases/%s", name, version), apiKey, nil)
}

// releaseJSON mirrors the registry's JSON release representation; it
// is decoded then handed to the caller without forcing it through the
// stricter model.Release (whose Requirements values are compiled
// semver.Range, not raw strings the API actually sends here).
type releaseJSON struct {
	Version string         `json:"version"`
	Meta    map[string]any `json:"meta"`
}

func (c *Client) GetPackageReleaseResponse(resp *http.Response) (*releaseJSON, error) {
	body, status, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var out releaseJSON
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("registry: decoding release response: %w", err)
		}
		return &out, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized:
		return nil, ErrInvalidApiKey
	case http.StatusForbidden:
		return nil, ErrForbidden
	default:
		return nil, unexpectedResponse(status, body)
	}
}

// --- shared helpers ---

func readBody(resp *http.Response) ([]byte, int, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("registry: reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func unexpectedResponse(status int, body []byte) error {
	return &UnexpectedResponseError{Status: status, Body: string(body)}
}

func simpleStatusResponse(resp *http.Response, ok ...int) error {
	body, status, err := readBody(resp)
	if err != nil {
		return err
	}
	for _, s := range ok {
		if status == s {
			return nil
		}
	}
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return ErrInvalidApiKey
	default:
		return unexpectedResponse(status, body)
	}
}
