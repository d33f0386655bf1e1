/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
	"gridboard/internal/storage"
)

func testCards(n int) []domain.Card {
	out := make([]domain.Card, n)
	for i := range out {
		out[i] = domain.Card{ID: fmt.Sprintf("c%d", i), Title: fmt.Sprintf("Card %d", i), DefaultSize: domain.Size{W: 4, H: 3}}
	}
	return out
}

func openStore(t *testing.T, kv storage.KV, cards []domain.Card) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, cards, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func entryOf(t *testing.T, entries []domain.LayoutEntry, id string) domain.LayoutEntry {
	t.Helper()
	for _, e := range entries {
		if e.CardID == id {
			return e
		}
	}
	t.Fatalf("no entry for %s in %v", id, entries)
	return domain.LayoutEntry{}
}

// failingKV accepts reads and rejects writes.
type failingKV struct{ storage.KV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestGetLayoutGeneratesAndPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	cards := testCards(6)
	s := openStore(t, kv, cards)
	got, err := s.GetLayout(ctx, "lg")
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, 0}, {4, 0}, {8, 0}, {0, 3}, {4, 3}, {8, 3}}
	for i, e := range got {
		if e.X != want[i][0] || e.Y != want[i][1] || e.W != 4 || e.H != 3 {
			t.Fatalf("entry %d = %+v, want at %v", i, e, want[i])
		}
	}
	if _, ok, _ := kv.Get(ctx, LayoutKey); !ok {
		t.Fatalf("generated layout was not persisted")
	}
	if _, err := s.GetLayout(ctx, "huge"); !errors.Is(err, ErrUnknownBreakpoint) {
		t.Fatalf("expected ErrUnknownBreakpoint, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	cards := testCards(7)
	s := openStore(t, kv, cards)
	for _, bp := range s.Breakpoints().Keys() {
		if _, err := s.GetLayout(ctx, bp); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.ApplyMove(ctx, "c3", "lg", 6, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyResize(ctx, "c1", "sm", 6, 5); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	again := openStore(t, kv, cards)
	if after := again.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("round trip changed snapshot:\nbefore %v\nafter  %v", before, after)
	}
}

func TestMalformedPayloadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	cards := testCards(4)
	payloads := []string{
		`{not json`,
		`{"lg":[{"id":"c0","x":-1,"y":0,"w":4,"h":3}]}`,
		`{"lg":[{"id":"c0","x":0,"y":0}]}`,
		`["lg"]`,
	}
	for _, p := range payloads {
		kv := storage.NewMemory()
		_ = kv.Set(ctx, LayoutKey, p)
		s := openStore(t, kv, cards)
		if len(s.Snapshot()) != 0 {
			t.Fatalf("payload %q should have been discarded, got %v", p, s.Snapshot())
		}
		got, _ := s.GetLayout(ctx, "md")
		if !grid.Equal(got, grid.Generate(s.Cards(), 10)) {
			t.Fatalf("payload %q: expected generated defaults, got %v", p, got)
		}
	}
}

func TestOpenPrunesStaleCardsAndUnknownBreakpoints(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	_ = kv.Set(ctx, LayoutKey, `{"lg":[{"id":"c0","x":0,"y":0,"w":4,"h":3},{"id":"gone","x":4,"y":0,"w":4,"h":3}],"retina":[{"id":"c0","x":0,"y":0,"w":4,"h":3}]}`)
	s := openStore(t, kv, testCards(1))
	snap := s.Snapshot()
	if _, ok := snap["retina"]; ok {
		t.Fatalf("unknown breakpoint kept: %v", snap)
	}
	if len(snap["lg"]) != 1 || snap["lg"][0].CardID != "c0" {
		t.Fatalf("stale card kept: %v", snap["lg"])
	}
	raw, _, _ := kv.Get(ctx, LayoutKey)
	if raw != `{"lg":[{"id":"c0","x":0,"y":0,"w":4,"h":3}]}` {
		t.Fatalf("pruned snapshot not persisted: %s", raw)
	}
}

func TestOpenRepairsInvalidGeometry(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	// c1 is too narrow and crosses the last column; c2 overlaps c0.
	_ = kv.Set(ctx, LayoutKey, `{"sm":[{"id":"c0","x":0,"y":0,"w":3,"h":3},{"id":"c1","x":5,"y":0,"w":1,"h":1},{"id":"c2","x":1,"y":1,"w":2,"h":2}]}`)
	s := openStore(t, kv, testCards(3))
	got := s.Snapshot()["sm"]
	if grid.HasOverlap(got) {
		t.Fatalf("overlap survived load: %v", got)
	}
	for _, e := range got {
		c, _ := s.Card(e.CardID)
		if !grid.Valid(e, c, 6) {
			t.Fatalf("invalid entry survived load: %+v", e)
		}
	}
}

func TestDropStaleCards(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(3))
	_, _ = s.GetLayout(ctx, "lg")
	if n := s.DropStaleCards(ctx, []string{"c0", "c2"}); n != 1 {
		t.Fatalf("DropStaleCards removed %d, want 1", n)
	}
	if n := s.DropStaleCards(ctx, []string{"c0", "c2"}); n != 0 {
		t.Fatalf("second DropStaleCards removed %d, want 0", n)
	}
}

func TestResetExactness(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(9))
	_, _ = s.ApplyMove(ctx, "c4", "lg", 0, 0)
	_, _ = s.ApplyResize(ctx, "c0", "xs", 4, 8)
	s.ResetToDefaults(ctx, nil)
	for _, bp := range s.Breakpoints() {
		got, err := s.GetLayout(ctx, bp.Key)
		if err != nil {
			t.Fatal(err)
		}
		if want := grid.Generate(s.Cards(), bp.Columns); !grid.Equal(got, want) {
			t.Fatalf("%s after reset = %v, want %v", bp.Key, got, want)
		}
	}
}

func TestResetWithNewCardSet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(3))
	s.ResetToDefaults(ctx, testCards(5))
	got, _ := s.GetLayout(ctx, "lg")
	if len(got) != 5 {
		t.Fatalf("expected 5 entries after reset with new cards, got %d", len(got))
	}
}

func TestResizeBeyondRowClampsAndOnlyPushesDownstream(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(6))
	before, _ := s.GetLayout(ctx, "lg")
	after, err := s.ApplyResize(ctx, "c1", "lg", 11, 3)
	if err != nil {
		t.Fatal(err)
	}
	if e := entryOf(t, after, "c1"); e.X != 4 || e.W != 8 {
		t.Fatalf("resized entry = %+v, want x=4 w=8", e)
	}
	if entryOf(t, after, "c0") != entryOf(t, before, "c0") {
		t.Fatalf("upstream card moved")
	}
	if grid.HasOverlap(after) {
		t.Fatalf("overlap after resize: %v", after)
	}
	// c2 sat to the right of c1 and must be pushed below it.
	if e := entryOf(t, after, "c2"); e.Y < 3 {
		t.Fatalf("c2 not pushed down: %+v", e)
	}
}

func TestMovedCardWinsItsTargetCell(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(3))
	after, err := s.ApplyMove(ctx, "c2", "lg", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if e := entryOf(t, after, "c2"); e.X != 0 || e.Y != 0 {
		t.Fatalf("moved card at %+v, want (0,0)", e)
	}
	if e := entryOf(t, after, "c0"); e.Y != 3 {
		t.Fatalf("displaced card at %+v, want y=3", e)
	}
}

func TestMoveClampsIntoColumns(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(1))
	after, _ := s.ApplyMove(ctx, "c0", "xs", 3, -5)
	if e := entryOf(t, after, "c0"); e.X != 0 || e.Y != 0 || e.W != 4 {
		t.Fatalf("clamped move = %+v", e)
	}
	if _, err := s.ApplyMove(ctx, "nope", "xs", 0, 0); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := openStore(t, kv, testCards(3))
	_, _ = s.GetLayout(ctx, "lg")
	before, _, _ := kv.Get(ctx, LayoutKey)
	prev, err := s.PreviewMove(ctx, "c2", "lg", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entryOf(t, prev, "c2").X != 0 {
		t.Fatalf("preview did not move card: %v", prev)
	}
	after, _, _ := kv.Get(ctx, LayoutKey)
	if before != after {
		t.Fatalf("preview persisted a change")
	}
	if got, _ := s.GetLayout(ctx, "lg"); entryOf(t, got, "c2").X != 8 {
		t.Fatalf("preview changed the stored layout: %v", got)
	}
}

func TestNewCardsAreAppendedBelow(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := openStore(t, kv, testCards(3))
	_, _ = s.GetLayout(ctx, "lg")
	s2 := openStore(t, kv, testCards(5))
	got, _ := s2.GetLayout(ctx, "lg")
	if len(got) != 5 || grid.HasOverlap(got) {
		t.Fatalf("new cards not placed: %v", got)
	}
	for _, id := range []string{"c0", "c1", "c2"} {
		if e := entryOf(t, got, id); e.Y != 0 {
			t.Fatalf("existing card %s moved: %+v", id, e)
		}
	}
	if e := entryOf(t, got, "c3"); e.Y != 3 || e.X != 0 {
		t.Fatalf("c3 = %+v, want (0,3)", e)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	a, _ := Open(ctx, kv, testCards(3), Options{Namespace: "a"})
	b, _ := Open(ctx, kv, testCards(3), Options{Namespace: "b"})
	_, _ = a.ApplyMove(ctx, "c2", "lg", 0, 0)
	got, _ := b.GetLayout(ctx, "lg")
	if entryOf(t, got, "c2").X != 8 {
		t.Fatalf("namespace b saw namespace a's move: %v", got)
	}
	if keys := kv.Keys(); !reflect.DeepEqual(keys, []string{"a:dashboard-layout", "b:dashboard-layout"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, failingKV{storage.NewMemory()}, testCards(3))
	after, err := s.ApplyMove(ctx, "c2", "lg", 0, 0)
	if err != nil {
		t.Fatalf("persistence failure must not surface: %v", err)
	}
	if entryOf(t, after, "c2").X != 0 {
		t.Fatalf("move lost: %v", after)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemory(), testCards(3))
	orig, _ := s.GetLayout(ctx, "lg")
	_, _ = s.ApplyMove(ctx, "c2", "lg", 0, 0)
	if err := s.Restore(ctx, "lg", orig); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetLayout(ctx, "lg"); !grid.Equal(got, orig) {
		t.Fatalf("Restore = %v, want %v", got, orig)
	}
	if err := s.Restore(ctx, "nope", orig); !errors.Is(err, ErrUnknownBreakpoint) {
		t.Fatalf("expected ErrUnknownBreakpoint, got %v", err)
	}
}

// Random gesture sequences never break the layout invariants.
func TestRandomGesturesKeepInvariants(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 40; seed++ {
		r := rand.New(rand.NewSource(seed))
		cards := testCards(8)
		for i := range cards {
			cards[i].MinW = 1 + r.Intn(3)
			cards[i].MinH = 1 + r.Intn(3)
			cards[i].DefaultSize = domain.Size{W: 1 + r.Intn(6), H: 1 + r.Intn(5)}
		}
		s := openStore(t, storage.NewMemory(), cards)
		bps := s.Breakpoints()
		for step := 0; step < 60; step++ {
			bp := bps[r.Intn(len(bps))]
			id := cards[r.Intn(len(cards))].ID
			var got []domain.LayoutEntry
			var err error
			if r.Intn(2) == 0 {
				got, err = s.ApplyMove(ctx, id, bp.Key, r.Intn(16)-2, r.Intn(20)-2)
			} else {
				got, err = s.ApplyResize(ctx, id, bp.Key, r.Intn(14)-1, r.Intn(8)-1)
			}
			if err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
			if grid.HasOverlap(got) {
				t.Fatalf("seed %d step %d: overlap %v", seed, step, got)
			}
			if len(got) != len(cards) {
				t.Fatalf("seed %d step %d: %d entries, want %d", seed, step, len(got), len(cards))
			}
			for _, e := range got {
				c, _ := s.Card(e.CardID)
				if !grid.Valid(e, c, bp.Columns) {
					t.Fatalf("seed %d step %d: invalid %+v at %s", seed, step, e, bp.Key)
				}
			}
		}
	}
}
