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

// Package verify implements the repository CDN's payload pipeline:
// gzip decompression, decoding the Signed envelope, and checking its
// RSA/SHA-512 signature against a repository public key. It also
// checks the plain SHA-256 checksum carried alongside tarball
// downloads, which travel ungzipped and unsigned.
package verify

import (
	"bytes"
	"compress/gzip"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/gohex/hexpm/wire"
)

// These sentinels are the taxonomy of failures this package can return
// (gzip and envelope decoding errors are wrapped, not sentinels). Callers
// that need to distinguish kinds should use errors.Is against these
// sentinels rather than matching error strings.
var (
	// ErrIncorrectPayloadSignature means the payload's RSA/SHA-512
	// signature did not verify against the supplied public key.
	ErrIncorrectPayloadSignature = errors.New("verify: the payload signature does not match the downloaded payload")
	// ErrIncorrectChecksum means a tarball body's SHA-256 digest did
	// not match the caller-supplied expected checksum.
	ErrIncorrectChecksum = errors.New("verify: the downloaded data did not have the expected checksum")
	// ErrInvalidPublicKey means the supplied PEM could not be parsed
	// into an RSA public key.
	ErrInvalidPublicKey = errors.New("verify: could not parse public key PEM")
)

// Payload verifies and decodes a gzipped, signed repository resource:
// it decompresses body, decodes the outer Signed envelope, and checks
// that signature covers payload under RSA PKCS#1 v1.5 with SHA-512
// using publicKeyPEM. It returns the inner payload bytes on success.
func Payload(body []byte, publicKeyPEM []byte) ([]byte, error) {
	raw, err := gunzip(body)
	if err != nil {
		return nil, fmt.Errorf("verify: gzip decode: %w", err)
	}

	signed, err := wire.UnmarshalSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("verify: decode signed envelope: %w", err)
	}

	pub, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	digest := sha512.Sum512(signed.Payload)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA512, digest[:], signed.Signature); err != nil {
		log.Debug().Int("payload_len", len(signed.Payload)).Msg("payload signature verification failed")
		return nil, ErrIncorrectPayloadSignature
	}
	return signed.Payload, nil
}

// Checksum verifies a plain (non-signed) tarball body against its
// expected SHA-256 digest and returns the body verbatim if it matches.
func Checksum(body []byte, wantSHA256 []byte) ([]byte, error) {
	got := sha256.Sum256(body)
	if !bytes.Equal(got[:], wantSHA256) {
		return nil, ErrIncorrectChecksum
	}
	return body, nil
}

func gunzip(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// parseRSAPublicKey decodes a PEM block containing a DER-encoded
// SubjectPublicKeyInfo (as Hex's repository public keys are
// distributed) and returns the RSA public key within.
func parseRSAPublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPublicKey
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, not RSA", ErrInvalidPublicKey, pub)
	}
	return rsaPub, nil
}
