/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

// Integer rectangle geometry in grid-cell units. A rectangle covers the
// half-open ranges [X, X+W) and [Y, Y+H).

import "gridboard/internal/domain"

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y int
	W, H int
}

// RectOf returns the rectangle occupied by a layout entry.
func RectOf(e domain.LayoutEntry) Rect { return Rect{X: e.X, Y: e.Y, W: e.W, H: e.H} }

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Overlaps reports whether r and o share at least one cell. Touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Bottom returns the first free row below all entries (0 for an empty layout).
func Bottom(entries []domain.LayoutEntry) int {
	b := 0
	for _, e := range entries {
		if v := e.Y + e.H; v > b {
			b = v
		}
	}
	return b
}

// HasOverlap reports whether any two entries occupy a common cell.
func HasOverlap(entries []domain.LayoutEntry) bool {
	for i := range entries {
		ri := RectOf(entries[i])
		for j := i + 1; j < len(entries); j++ {
			if ri.Overlaps(RectOf(entries[j])) {
				return true
			}
		}
	}
	return false
}
