/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"fmt"
	"testing"

	"gridboard/internal/domain"
)

func uniformCards(n, w, h int) []domain.Card {
	cards := make([]domain.Card, n)
	for i := range cards {
		cards[i] = domain.Card{ID: fmt.Sprintf("c%d", i+1), MinW: 2, MinH: 2, DefaultSize: domain.Size{W: w, H: h}}
	}
	return cards
}

func TestGenerateThreePerRow(t *testing.T) {
	got := Generate(uniformCards(6, 4, 3), 12)
	want := [][2]int{{0, 0}, {4, 0}, {8, 0}, {0, 3}, {4, 3}, {8, 3}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.X != want[i][0] || e.Y != want[i][1] || e.W != 4 || e.H != 3 {
			t.Fatalf("entry %d = %+v, want (%d,%d) 4x3", i, e, want[i][0], want[i][1])
		}
		if e.CardID != fmt.Sprintf("c%d", i+1) {
			t.Fatalf("entry %d card = %s", i, e.CardID)
		}
	}
}

func TestGenerateWrapsBelowTallestInRow(t *testing.T) {
	cards := []domain.Card{
		{ID: "a", DefaultSize: domain.Size{W: 6, H: 2}},
		{ID: "b", DefaultSize: domain.Size{W: 6, H: 5}},
		{ID: "c", DefaultSize: domain.Size{W: 4, H: 1}},
	}
	got := Generate(cards, 12)
	if got[2].X != 0 || got[2].Y != 5 {
		t.Fatalf("third card placed at (%d,%d), want (0,5)", got[2].X, got[2].Y)
	}
	if HasOverlap(got) {
		t.Fatalf("generated layout overlaps: %+v", got)
	}
}

func TestGenerateClampsToMinimumsAndColumns(t *testing.T) {
	cards := []domain.Card{
		{ID: "tiny", MinW: 3, MinH: 4, DefaultSize: domain.Size{W: 1, H: 1}},
		{ID: "huge", MinW: 2, MinH: 2, DefaultSize: domain.Size{W: 20, H: 3}},
	}
	got := Generate(cards, 6)
	if got[0].W != 3 || got[0].H != 4 {
		t.Fatalf("tiny = %+v, want 3x4", got[0])
	}
	if got[1].W != 6 || got[1].X != 0 || got[1].Y != 4 {
		t.Fatalf("huge = %+v, want full width on second row", got[1])
	}
}

func TestGenerateSkipsDuplicateIDs(t *testing.T) {
	cards := uniformCards(2, 4, 3)
	cards = append(cards, cards[0])
	if got := Generate(cards, 12); len(got) != 2 {
		t.Fatalf("expected duplicates skipped, got %d entries", len(got))
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for cols := 1; cols <= 12; cols++ {
		cards := randomCards(newRand(int64(cols)), 15)
		a := Generate(cards, cols)
		b := Generate(cards, cols)
		if !Equal(a, b) {
			t.Fatalf("cols=%d: Generate not deterministic", cols)
		}
		if HasOverlap(a) {
			t.Fatalf("cols=%d: generated layout overlaps", cols)
		}
		for i, e := range a {
			if !Valid(e, cards[i], cols) {
				t.Fatalf("cols=%d: invalid entry %+v", cols, e)
			}
		}
	}
}

func TestAppendMissingPlacesBelow(t *testing.T) {
	cards := uniformCards(4, 6, 2)
	existing := Generate(cards[:2], 12)
	got := AppendMissing(existing, cards, 12)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[2].Y != 2 || got[2].X != 0 || got[3].X != 6 || got[3].Y != 2 {
		t.Fatalf("missing cards misplaced: %+v", got[2:])
	}
	if same := AppendMissing(got, cards, 12); !Equal(same, got) {
		t.Fatalf("AppendMissing changed a complete layout")
	}
}

func TestSizingApplyFillsZeroFields(t *testing.T) {
	c := DefaultSizing().Apply(domain.Card{ID: "x"})
	if c.MinW != 2 || c.MinH != 2 || c.DefaultSize.W != 4 || c.DefaultSize.H != 3 {
		t.Fatalf("unexpected sizing: %+v", c)
	}
	c = DefaultSizing().Apply(domain.Card{ID: "y", MinW: 5, DefaultSize: domain.Size{W: 8, H: 6}})
	if c.MinW != 5 || c.DefaultSize.W != 8 || c.DefaultSize.H != 6 {
		t.Fatalf("explicit sizes overwritten: %+v", c)
	}
}
