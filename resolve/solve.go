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

package resolve

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gohex/hexpm/semver"
)

// solve performs the backtracking search proper: repeatedly pick the
// highest-priority pending package, try its candidate versions in
// preference order, and recurse into the dependency edges the chosen
// version introduces. A candidate that is inconsistent with an
// already-decided version, or that leads to failure further down the
// tree, is abandoned in favor of the next candidate; running out of
// candidates for a package fails the whole branch, letting an earlier
// call try its own next candidate.
//
// requirement holds every package's accumulated requirement range (the
// intersection of every edge discovered so far that targets it);
// decided holds the versions chosen so far; pending holds the names
// that have a requirement but no decision yet.
func solve(p *provider, requirement map[string]semver.Range, decided map[string]semver.Version, pending map[string]bool) (map[string]semver.Version, error) {
	if len(pending) == 0 {
		return decided, nil
	}

	name := pickNext(p, requirement, pending)
	req := requirement[name]

	candidates, err := p.candidates(name, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no version of %q satisfies %s", name, req)
	}

	restPending := make(map[string]bool, len(pending)-1)
	for n := range pending {
		if n != name {
			restPending[n] = true
		}
	}

	var lastErr error
	for _, v := range candidates {
		deps, err := p.getDependencies(name, v)
		if err != nil {
			log.Debug().Str("package", name).Str("version", v.String()).Err(err).Msg("candidate unavailable")
			lastErr = err
			continue
		}

		nextDecided := cloneDecided(decided)
		nextDecided[name] = v
		nextRequirement := cloneRequirement(requirement)
		nextPending := cloneNames(restPending)

		consistent := true
		for dep, depRange := range deps {
			merged := depRange
			if existing, ok := nextRequirement[dep]; ok {
				merged = existing.Intersect(depRange)
			}
			nextRequirement[dep] = merged
			if dv, isDecided := nextDecided[dep]; isDecided {
				if !merged.Contains(dv) {
					consistent = false
					break
				}
				continue
			}
			if !merged.Any() {
				consistent = false
				break
			}
			nextPending[dep] = true
		}
		if !consistent {
			lastErr = fmt.Errorf("%s@%s is incompatible with an already-decided dependency", name, v)
			continue
		}

		result, err := solve(p, nextRequirement, nextDecided, nextPending)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// pickNext chooses which pending package the solver decides next: the
// one the provider reports as lowest priority-score, breaking ties by
// name for determinism.
func pickNext(p *provider, requirement map[string]semver.Range, pending map[string]bool) string {
	names := sortedNames(pending)
	best := names[0]
	bestScore := p.prioritize(best, requirement[best])
	for _, name := range names[1:] {
		score := p.prioritize(name, requirement[name])
		if score < bestScore {
			best, bestScore = name, score
		}
	}
	return best
}

func cloneDecided(m map[string]semver.Version) map[string]semver.Version {
	out := make(map[string]semver.Version, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRequirement(m map[string]semver.Range) map[string]semver.Range {
	out := make(map[string]semver.Range, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneNames(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
