/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layoutstore owns the authoritative card geometry per breakpoint and
// the set of hidden cards. Both are persisted through a storage.KV under the
// keys "dashboard-layout" and "dashboard-hidden-cards" (optionally
// namespaced). Every mutation is written through before the call returns.
package layoutstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
)

const (
	LayoutKey = "dashboard-layout"
	HiddenKey = "dashboard-hidden-cards"
)

var (
	ErrUnknownCard       = errors.New("unknown card")
	ErrUnknownBreakpoint = errors.New("unknown breakpoint")
)

// Options configures a Store.
type Options struct {
	Namespace   string
	Breakpoints grid.Breakpoints
	Sizing      grid.Sizing
}

// Store holds the layout snapshot. It is not safe for concurrent use; the
// dashboard manager serializes access.
type Store struct {
	kv    storage.KV
	key   string
	ns    string
	bps   grid.Breakpoints
	sz    grid.Sizing
	cards []domain.Card
	byID  map[string]domain.Card
	snap  domain.Snapshot
	log   *slog.Logger
}

// Open restores the persisted snapshot, or starts empty when it is missing or
// malformed. Entries for cards not in cards are dropped, entries for unknown
// breakpoints are dropped, and invalid geometry is repaired.
func Open(ctx context.Context, kv storage.KV, cards []domain.Card, opts Options) (*Store, error) {
	if kv == nil {
		return nil, errors.New("layoutstore: nil storage")
	}
	bps := opts.Breakpoints
	if len(bps) == 0 {
		bps = grid.DefaultBreakpoints()
	}
	sz := opts.Sizing
	if sz == (grid.Sizing{}) {
		sz = grid.DefaultSizing()
	}
	s := &Store{
		kv:   kv,
		key:  storage.Key(opts.Namespace, LayoutKey),
		ns:   opts.Namespace,
		bps:  bps,
		sz:   sz,
		snap: domain.Snapshot{},
		log:  applog.WithComponent("layoutstore").With(slog.String("namespace", opts.Namespace)),
	}
	s.setCards(cards)

	snap, err := s.load(ctx)
	switch {
	case errors.Is(err, ErrMalformedState):
		s.log.WarnContext(ctx, "discarding persisted layout; defaults will be generated", slog.Any("err", err))
	case err != nil:
		s.log.WarnContext(ctx, "layout read failed; defaults will be generated", slog.Any("err", err))
	default:
		s.snap = snap
	}
	pruned := s.prune(s.cardIDs())
	repaired := s.normalize()
	if pruned > 0 || repaired > 0 {
		s.log.InfoContext(ctx, "repaired persisted layout", slog.Int("stale_entries", pruned), slog.Int("repaired_breakpoints", repaired))
		s.persist(ctx)
	}
	return s, nil
}

func (s *Store) setCards(cards []domain.Card) {
	s.cards = make([]domain.Card, 0, len(cards))
	s.byID = make(map[string]domain.Card, len(cards))
	for _, c := range cards {
		if _, dup := s.byID[c.ID]; dup || c.ID == "" {
			continue
		}
		c = s.sz.Apply(c)
		s.cards = append(s.cards, c)
		s.byID[c.ID] = c
	}
}

func (s *Store) load(ctx context.Context) (domain.Snapshot, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok {
		return domain.Snapshot{}, nil
	}
	return decodeSnapshot(raw)
}

func decodeSnapshot(raw string) (domain.Snapshot, error) {
	if err := validate(layoutSchema, raw); err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if snap == nil {
		snap = domain.Snapshot{}
	}
	return snap, nil
}

// normalize drops unknown breakpoints and duplicate entries, clamps entries
// that break card or column bounds, and compacts breakpoints that overlap.
// It returns the number of breakpoints it changed.
func (s *Store) normalize() int {
	changed := 0
	for key, entries := range s.snap {
		bp, ok := s.bps.Lookup(key)
		if !ok {
			delete(s.snap, key)
			changed++
			continue
		}
		fixed := make([]domain.LayoutEntry, 0, len(entries))
		seen := make(map[string]struct{}, len(entries))
		dirty := false
		for _, e := range entries {
			if _, dup := seen[e.CardID]; dup {
				dirty = true
				continue
			}
			seen[e.CardID] = struct{}{}
			c := s.byID[e.CardID]
			if !grid.Valid(e, c, bp.Columns) {
				e = grid.ClampMove(e, c, bp.Columns)
				dirty = true
			}
			fixed = append(fixed, e)
		}
		if grid.HasOverlap(fixed) {
			fixed = grid.Compact(fixed)
			dirty = true
		}
		if dirty {
			s.snap[key] = fixed
			changed++
		}
	}
	return changed
}

// prune removes entries whose card is not in valid and returns how many went.
func (s *Store) prune(valid []string) int {
	keep := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		keep[id] = struct{}{}
	}
	removed := 0
	for key, entries := range s.snap {
		out := make([]domain.LayoutEntry, 0, len(entries))
		for _, e := range entries {
			if _, ok := keep[e.CardID]; ok {
				out = append(out, e)
			} else {
				removed++
			}
		}
		s.snap[key] = out
	}
	return removed
}

// persist writes the whole snapshot. Failures are logged, not returned.
func (s *Store) persist(ctx context.Context) {
	b, err := json.Marshal(s.snap)
	if err != nil {
		s.log.ErrorContext(ctx, "marshal layout failed", slog.Any("err", err))
		return
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		s.log.WarnContext(ctx, "persist layout failed", slog.Any("err", err))
	}
}

// Cards returns the card definitions with size defaults applied, in definition order.
func (s *Store) Cards() []domain.Card { return append([]domain.Card(nil), s.cards...) }

// Card looks up a definition by ID.
func (s *Store) Card(id string) (domain.Card, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Breakpoints returns the breakpoint table in use.
func (s *Store) Breakpoints() grid.Breakpoints { return s.bps }

// Snapshot returns a copy of every stored breakpoint layout.
func (s *Store) Snapshot() domain.Snapshot { return s.snap.Clone() }

// Layout returns the stored entries for bp without generating anything.
func (s *Store) Layout(bp domain.BreakpointKey) ([]domain.LayoutEntry, bool) {
	entries, ok := s.snap[bp]
	return append([]domain.LayoutEntry(nil), entries...), ok
}

// GetLayout returns the entries for bp, generating and storing defaults on
// first use. Cards defined since the layout was stored are appended below it.
func (s *Store) GetLayout(ctx context.Context, bp domain.BreakpointKey) ([]domain.LayoutEntry, error) {
	b, ok := s.bps.Lookup(bp)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	entries, stored := s.snap[bp]
	switch {
	case !stored:
		entries = grid.Generate(s.cards, b.Columns)
		s.snap[bp] = entries
		s.log.DebugContext(ctx, "generated default layout", slog.String("breakpoint", string(bp)), slog.Int("cards", len(entries)))
		s.persist(ctx)
	case len(entries) < len(s.cards):
		entries = grid.Compact(grid.AppendMissing(entries, s.cards, b.Columns))
		s.snap[bp] = entries
		s.log.DebugContext(ctx, "placed new cards", slog.String("breakpoint", string(bp)))
		s.persist(ctx)
	}
	return append([]domain.LayoutEntry(nil), entries...), nil
}

// ApplyMove moves a card, clamps it into bounds, compacts and persists.
func (s *Store) ApplyMove(ctx context.Context, id string, bp domain.BreakpointKey, x, y int) ([]domain.LayoutEntry, error) {
	out, err := s.PreviewMove(ctx, id, bp, x, y)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, bp, out), nil
}

// ApplyResize resizes a card, clamps it, compacts and persists.
func (s *Store) ApplyResize(ctx context.Context, id string, bp domain.BreakpointKey, w, h int) ([]domain.LayoutEntry, error) {
	out, err := s.PreviewResize(ctx, id, bp, w, h)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, bp, out), nil
}

// PreviewMove computes the layout ApplyMove would produce without storing it.
func (s *Store) PreviewMove(ctx context.Context, id string, bp domain.BreakpointKey, x, y int) ([]domain.LayoutEntry, error) {
	return s.plan(ctx, id, bp, func(e domain.LayoutEntry, c domain.Card, cols int) domain.LayoutEntry {
		e.X, e.Y = x, y
		return grid.ClampMove(e, c, cols)
	})
}

// PreviewResize computes the layout ApplyResize would produce without storing it.
func (s *Store) PreviewResize(ctx context.Context, id string, bp domain.BreakpointKey, w, h int) ([]domain.LayoutEntry, error) {
	return s.plan(ctx, id, bp, func(e domain.LayoutEntry, c domain.Card, cols int) domain.LayoutEntry {
		e.W, e.H = w, h
		return grid.ClampResize(e, c, cols)
	})
}

// plan applies edit to one entry and compacts. The edited entry goes first so
// that it wins ties against the card it lands on.
func (s *Store) plan(ctx context.Context, id string, bp domain.BreakpointKey, edit func(domain.LayoutEntry, domain.Card, int) domain.LayoutEntry) ([]domain.LayoutEntry, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	b, _ := s.bps.Lookup(bp)
	entries, err := s.GetLayout(ctx, bp)
	if err != nil {
		return nil, err
	}
	work := make([]domain.LayoutEntry, 0, len(entries))
	for _, e := range entries {
		if e.CardID == id {
			before := e
			e = edit(e, c, b.Columns)
			if e != before {
				s.log.DebugContext(ctx, "entry adjusted", slog.String("card", id), slog.Any("from", before), slog.Any("to", e))
			}
			work = append([]domain.LayoutEntry{e}, work...)
			continue
		}
		work = append(work, e)
	}
	return grid.Compact(work), nil
}

func (s *Store) commit(ctx context.Context, bp domain.BreakpointKey, entries []domain.LayoutEntry) []domain.LayoutEntry {
	s.snap[bp] = entries
	s.persist(ctx)
	return append([]domain.LayoutEntry(nil), entries...)
}

// ResetToDefaults replaces the card set when cards is non-nil, regenerates
// every breakpoint from scratch and persists.
func (s *Store) ResetToDefaults(ctx context.Context, cards []domain.Card) {
	if cards != nil {
		s.setCards(cards)
	}
	s.snap = make(domain.Snapshot, len(s.bps))
	for _, b := range s.bps {
		s.snap[b.Key] = grid.Generate(s.cards, b.Columns)
	}
	s.log.InfoContext(ctx, "layout reset", slog.Int("breakpoints", len(s.bps)), slog.Int("cards", len(s.cards)))
	s.persist(ctx)
}

// DropStaleCards removes entries for cards outside validIDs and persists when
// anything was removed. It returns the number of removed entries.
func (s *Store) DropStaleCards(ctx context.Context, validIDs []string) int {
	n := s.prune(validIDs)
	if n > 0 {
		s.log.InfoContext(ctx, "dropped stale card entries", slog.Int("count", n))
		s.persist(ctx)
	}
	return n
}

// Restore replaces one breakpoint wholesale, used by undo/redo. Entries are
// normalized the same way a loaded snapshot is.
func (s *Store) Restore(ctx context.Context, bp domain.BreakpointKey, entries []domain.LayoutEntry) error {
	if _, ok := s.bps.Lookup(bp); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	s.snap[bp] = append([]domain.LayoutEntry(nil), entries...)
	s.prune(s.cardIDs())
	s.normalize()
	s.persist(ctx)
	return nil
}

func (s *Store) cardIDs() []string {
	ids := make([]string, len(s.cards))
	for i, c := range s.cards {
		ids[i] = c.ID
	}
	return ids
}
