/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gridboard/internal/domain"
)

// Breakpoint is one viewport-width tier and its column count.
type Breakpoint struct {
	Key      domain.BreakpointKey
	MinWidth int
	Columns  int
}

// Breakpoints is a threshold table ordered largest MinWidth first.
type Breakpoints []Breakpoint

// DefaultBreakpoints mirrors the responsive grid tiers used by the web dashboard.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		{Key: "lg", MinWidth: 1200, Columns: 12},
		{Key: "md", MinWidth: 996, Columns: 10},
		{Key: "sm", MinWidth: 768, Columns: 6},
		{Key: "xs", MinWidth: 480, Columns: 4},
		{Key: "xxs", MinWidth: 0, Columns: 2},
	}
}

// NewBreakpoints validates a table and orders it largest-first.
func NewBreakpoints(bps []Breakpoint) (Breakpoints, error) {
	if len(bps) == 0 {
		return nil, errors.New("at least one breakpoint is required")
	}
	seen := make(map[domain.BreakpointKey]struct{}, len(bps))
	out := make(Breakpoints, 0, len(bps))
	for _, bp := range bps {
		key := domain.BreakpointKey(strings.TrimSpace(string(bp.Key)))
		if key == "" {
			return nil, errors.New("breakpoint key is required")
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate breakpoint %q", key)
		}
		if bp.Columns <= 0 {
			return nil, fmt.Errorf("breakpoint %q: columns must be >= 1", key)
		}
		seen[key] = struct{}{}
		bp.Key = key
		out = append(out, bp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinWidth > out[j].MinWidth })
	return out, nil
}

// Resolve returns the first tier whose MinWidth <= width, or the smallest tier.
// It is total over all widths, including zero and negative ones.
func (b Breakpoints) Resolve(width int) Breakpoint {
	for _, bp := range b {
		if bp.MinWidth <= width {
			return bp
		}
	}
	return b[len(b)-1]
}

// Lookup returns the tier with the given key.
func (b Breakpoints) Lookup(key domain.BreakpointKey) (Breakpoint, bool) {
	for _, bp := range b {
		if bp.Key == key {
			return bp, true
		}
	}
	return Breakpoint{}, false
}

// Keys lists the tier keys, largest first.
func (b Breakpoints) Keys() []domain.BreakpointKey {
	out := make([]domain.BreakpointKey, len(b))
	for i, bp := range b {
		out[i] = bp.Key
	}
	return out
}
