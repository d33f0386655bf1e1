/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import "gridboard/internal/domain"

// ClampMove fits e to the card minimums and the column count, keeping its
// size and sliding it left when it would cross the last column.
func ClampMove(e domain.LayoutEntry, c domain.Card, columns int) domain.LayoutEntry {
	e = clampSize(e, c, columns)
	if e.X+e.W > columns {
		e.X = columns - e.W
	}
	if e.X < 0 {
		e.X = 0
	}
	if e.Y < 0 {
		e.Y = 0
	}
	return e
}

// ClampResize fits e to the card minimums and the column count, keeping its
// position and shrinking it to the columns remaining in its row. The entry
// only slides left when even its minimum width does not fit.
func ClampResize(e domain.LayoutEntry, c domain.Card, columns int) domain.LayoutEntry {
	e = clampSize(e, c, columns)
	if e.X < 0 {
		e.X = 0
	}
	if e.Y < 0 {
		e.Y = 0
	}
	if e.X+e.W > columns {
		e.W = max(columns-e.X, minWidth(c, columns))
	}
	if e.X+e.W > columns {
		e.X = columns - e.W
	}
	return e
}

func clampSize(e domain.LayoutEntry, c domain.Card, columns int) domain.LayoutEntry {
	e.W = max(e.W, minWidth(c, columns))
	e.W = min(e.W, max(columns, 1))
	e.H = max(e.H, minHeight(c))
	return e
}

// Valid reports whether e satisfies the per-entry invariants for c.
func Valid(e domain.LayoutEntry, c domain.Card, columns int) bool {
	return e.W >= minWidth(c, columns) && e.H >= minHeight(c) &&
		e.X >= 0 && e.Y >= 0 && e.X+e.W <= columns
}
