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
	"regexp"
)

var (
	packageNamePattern = regexp.MustCompile(`^[a-z]\w*$`)
	versionPattern     = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// validatePackageAndVersion checks package and version against the
// identifier regexes before any request is built from them.
func validatePackageAndVersion(pkg, version string) error {
	if !packageNamePattern.MatchString(pkg) {
		return fmt.Errorf("%w: %q", ErrInvalidPackageName, pkg)
	}
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersionFormat, version)
	}
	return nil
}
