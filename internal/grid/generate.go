/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import "gridboard/internal/domain"

// Sizing supplies fallbacks for cards that leave their size fields at zero.
type Sizing struct {
	DefaultW int
	DefaultH int
	MinW     int
	MinH     int
}

// DefaultSizing matches the web dashboard: 4x3 cards, never smaller than 2x2.
func DefaultSizing() Sizing { return Sizing{DefaultW: 4, DefaultH: 3, MinW: 2, MinH: 2} }

// Apply fills zero size fields of c from s.
func (s Sizing) Apply(c domain.Card) domain.Card {
	if c.MinW <= 0 {
		c.MinW = max(s.MinW, 1)
	}
	if c.MinH <= 0 {
		c.MinH = max(s.MinH, 1)
	}
	if c.DefaultSize.W <= 0 {
		c.DefaultSize.W = s.DefaultW
	}
	if c.DefaultSize.H <= 0 {
		c.DefaultSize.H = s.DefaultH
	}
	return c
}

// minWidth is the card's minimum width, capped at the column count so a card
// always fits on a narrow breakpoint.
func minWidth(c domain.Card, columns int) int {
	return min(max(c.MinW, 1), max(columns, 1))
}

func minHeight(c domain.Card) int { return max(c.MinH, 1) }

// defaultEntrySize returns the card's default size clamped to its minimums
// and the column count.
func defaultEntrySize(c domain.Card, columns int) (w, h int) {
	w = max(c.DefaultSize.W, minWidth(c, columns))
	w = min(w, max(columns, 1))
	h = max(c.DefaultSize.H, minHeight(c))
	return w, h
}

// Generate places cards row-major: a cursor walks left to right and wraps to
// the next row, below the tallest card of the current row, when a card would
// cross the last column. Output order follows the card order; cards repeating
// an earlier ID are skipped.
func Generate(cards []domain.Card, columns int) []domain.LayoutEntry {
	return generateFrom(cards, columns, 0)
}

func generateFrom(cards []domain.Card, columns, top int) []domain.LayoutEntry {
	out := make([]domain.LayoutEntry, 0, len(cards))
	seen := make(map[string]struct{}, len(cards))
	x, y, rowH := 0, top, 0
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		w, h := defaultEntrySize(c, columns)
		if x+w > columns {
			x = 0
			y += rowH
			rowH = 0
		}
		out = append(out, domain.LayoutEntry{CardID: c.ID, X: x, Y: y, W: w, H: h})
		x += w
		rowH = max(rowH, h)
	}
	return out
}

// AppendMissing adds row-major placements below the existing layout for every
// card that has no entry yet.
func AppendMissing(entries []domain.LayoutEntry, cards []domain.Card, columns int) []domain.LayoutEntry {
	have := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		have[e.CardID] = struct{}{}
	}
	var missing []domain.Card
	for _, c := range cards {
		if _, ok := have[c.ID]; !ok {
			missing = append(missing, c)
		}
	}
	out := append([]domain.LayoutEntry(nil), entries...)
	if len(missing) == 0 {
		return out
	}
	return append(out, generateFrom(missing, columns, Bottom(entries))...)
}
