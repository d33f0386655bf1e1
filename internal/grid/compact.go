/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"sort"

	"gridboard/internal/domain"
)

// Compact packs entries upward ("gravity pack"). Entries are visited in
// ascending (y, x) order and each one drops to the smallest y >= 0 at which
// it intersects no already placed entry. x and w are preserved, so the result
// is overlap-free, has no removable vertical gaps, and compacting it again is
// a no-op. Later duplicates of a card ID are discarded. The result is in
// reading order of the new positions; entries on the same cell keep their
// processing order, so an edited entry placed first still wins.
func Compact(entries []domain.LayoutEntry) []domain.LayoutEntry {
	items := dedupe(entries)
	sortReading(items)
	placed := make([]domain.LayoutEntry, 0, len(items))
	for _, e := range items {
		e.Y = settle(e, placed)
		placed = append(placed, e)
	}
	sortReading(placed)
	return placed
}

func sortReading(entries []domain.LayoutEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Y != entries[j].Y {
			return entries[i].Y < entries[j].Y
		}
		return entries[i].X < entries[j].X
	})
}

// settle returns the lowest row for e that is free of placed entries.
// Jumping straight to the bottom of a colliding entry never skips a valid
// row, because every row above that bottom still intersects the collider.
func settle(e domain.LayoutEntry, placed []domain.LayoutEntry) int {
	r := RectOf(e)
	r.Y = 0
	for {
		moved := false
		for _, p := range placed {
			pr := RectOf(p)
			if r.Overlaps(pr) {
				r.Y = pr.Bottom()
				moved = true
			}
		}
		if !moved {
			return r.Y
		}
	}
}

func dedupe(entries []domain.LayoutEntry) []domain.LayoutEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]domain.LayoutEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.CardID]; dup {
			continue
		}
		seen[e.CardID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// SameGeometry reports whether two layouts place the same cards on the same
// rectangles, regardless of order.
func SameGeometry(a, b []domain.LayoutEntry) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[string]domain.LayoutEntry, len(a))
	for _, e := range a {
		byID[e.CardID] = e
	}
	for _, e := range b {
		if o, ok := byID[e.CardID]; !ok || o != e {
			return false
		}
	}
	return true
}

// Equal reports whether two layouts hold the same entries in the same order.
func Equal(a, b []domain.LayoutEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
