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
	"errors"
	"fmt"
)

// ApiError is the taxonomy every *_response decoder in this package
// maps HTTP status codes onto:
//
//	200/201/204                      -> success
//	401                               -> ErrInvalidCredentials (or ErrInvalidApiKey for key-authenticated endpoints)
//	403                               -> ErrForbidden (or ErrNotFound for repository reads that hide existence)
//	404                               -> ErrNotFound
//	422 on publish, body has --replace -> ErrNotReplacing
//	422 on publish, otherwise          -> ErrLateModification
//	429                               -> ErrRateLimited
//	anything else                     -> *UnexpectedResponseError
type ApiError error

var (
	ErrRateLimited        ApiError = errors.New("registry: the rate limit for the Hex API has been exceeded")
	ErrInvalidCredentials ApiError = errors.New("registry: invalid username and password combination")
	ErrInvalidApiKey      ApiError = errors.New("registry: the given API key was not valid")
	ErrForbidden          ApiError = errors.New("registry: this account is not authorized for this action")
	ErrNotFound           ApiError = errors.New("registry: resource was not found")
	ErrNotReplacing       ApiError = errors.New("registry: must explicitly express your intention to replace the release")
	ErrLateModification   ApiError = errors.New("registry: can only modify a release up to one hour after publication")

	// ErrInvalidPackageName and ErrInvalidVersionFormat report that a
	// caller-supplied identifier failed the §6 validation regexes
	// before any request was built.
	ErrInvalidPackageName   = errors.New("registry: invalid package name")
	ErrInvalidVersionFormat = errors.New("registry: invalid version string")
)

// UnexpectedResponseError is returned for any status code the taxonomy
// above does not recognise for the endpoint in question.
type UnexpectedResponseError struct {
	Status int
	Body   string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("registry: unexpected response %d: %s", e.Status, e.Body)
}
