/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dashboard composes the layout store, the hidden-card set and the
// session mode into the surface a host paints. All commands run on the
// caller's goroutine; a Manager must not be used from several goroutines at
// once without external locking.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
	"gridboard/internal/layoutstore"
	applog "gridboard/internal/log"
	"gridboard/internal/session"
	"gridboard/internal/storage"
	"gridboard/internal/undo"
)

var (
	ErrNotEditing = errors.New("dashboard is not in edit mode")
	ErrSimplified = errors.New("edit mode is unavailable in the introductory view")
)

// Mode is the manager's state.
type Mode int

const (
	LockedSimplified Mode = iota
	LockedFull
	Editing
)

func (m Mode) String() string {
	switch m {
	case LockedSimplified:
		return "locked+simplified"
	case LockedFull:
		return "locked+full"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	for _, c := range []Mode{LockedSimplified, LockedFull, Editing} {
		if c.String() == string(b) {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", b)
}

// Tracker receives anonymous usage events. *telemetry.Client satisfies it.
type Tracker interface {
	Event(name string, props map[string]any)
}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	Namespace       string
	Breakpoints     grid.Breakpoints
	Sizing          grid.Sizing
	SimplifiedCount int
	// Width is the initial viewport width in pixels.
	Width     int
	RowHeight int
	Margin    int
	Tracker   Tracker
	History   undo.Config
}

// Manager is the dashboard card manager.
type Manager struct {
	store   *layoutstore.Store
	vis     *layoutstore.Visibility
	sess    *session.Controller
	history *undo.Manager
	tracker Tracker
	log     *slog.Logger

	bps       grid.Breakpoints
	bp        grid.Breakpoint
	width     int
	introN    int
	rowHeight int
	margin    int

	// preview holds the layout of an in-flight gesture at bp.
	preview []domain.LayoutEntry

	listeners []func(View)
}

// New restores persisted state from kv and starts a session.
func New(ctx context.Context, kv storage.KV, cards []domain.Card, opts Options) (*Manager, error) {
	bps := opts.Breakpoints
	if len(bps) == 0 {
		bps = grid.DefaultBreakpoints()
	}
	store, err := layoutstore.Open(ctx, kv, cards, layoutstore.Options{
		Namespace:   opts.Namespace,
		Breakpoints: bps,
		Sizing:      opts.Sizing,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cards))
	for _, c := range store.Cards() {
		ids = append(ids, c.ID)
	}
	vis, err := layoutstore.OpenVisibility(ctx, kv, opts.Namespace, ids)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		store:     store,
		vis:       vis,
		sess:      session.Start(ctx, kv, opts.Namespace),
		history:   undo.NewManager(opts.History),
		tracker:   opts.Tracker,
		log:       applog.WithComponent("dashboard").With(slog.String("namespace", opts.Namespace)),
		bps:       bps,
		introN:    opts.SimplifiedCount,
		rowHeight: opts.RowHeight,
		margin:    opts.Margin,
	}
	if m.introN <= 0 {
		m.introN = 4
	}
	if m.rowHeight <= 0 {
		m.rowHeight = 60
	}
	if m.margin < 0 {
		m.margin = 0
	}
	width := opts.Width
	if width <= 0 {
		width = 1280
	}
	m.width = width
	m.bp = bps.Resolve(width)
	if _, err := store.GetLayout(ctx, m.bp.Key); err != nil {
		return nil, err
	}
	m.log.DebugContext(ctx, "dashboard ready", slog.String("breakpoint", string(m.bp.Key)), slog.String("mode", m.Mode().String()))
	return m, nil
}

// Mode derives the state from the session flags.
func (m *Manager) Mode() Mode {
	switch {
	case m.sess.EditMode():
		return Editing
	case m.sess.Simplified():
		return LockedSimplified
	default:
		return LockedFull
	}
}

// Breakpoint returns the active breakpoint.
func (m *Manager) Breakpoint() grid.Breakpoint { return m.bp }

// Width is the last viewport width in pixels.
func (m *Manager) Width() int { return m.width }

// Session returns the session flags.
func (m *Manager) Session() domain.SessionState { return m.sess.State() }

// OnChange registers fn to be called with the new view after every state change.
func (m *Manager) OnChange(fn func(View)) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

func (m *Manager) notify() {
	if len(m.listeners) == 0 {
		return
	}
	v := m.View()
	for _, fn := range m.listeners {
		fn(v)
	}
}

func (m *Manager) track(name string, props map[string]any) {
	if m.tracker != nil {
		m.tracker.Event(name, props)
	}
}

// ToggleEditMode enters or leaves edit mode and returns the new edit flag.
// Leaving edit mode is the save transition; geometry is already persisted.
func (m *Manager) ToggleEditMode(ctx context.Context) (bool, error) {
	if m.sess.EditMode() {
		return false, m.Save(ctx)
	}
	if !m.sess.SetEditMode(true) {
		return false, ErrSimplified
	}
	m.log.InfoContext(ctx, "edit mode entered", slog.String("breakpoint", string(m.bp.Key)))
	m.track("edit_mode", map[string]any{"on": true})
	m.notify()
	return true, nil
}

// Save leaves edit mode, dropping any unfinished gesture.
func (m *Manager) Save(ctx context.Context) error {
	if !m.sess.EditMode() {
		return ErrNotEditing
	}
	m.preview = nil
	m.sess.SetEditMode(false)
	m.log.InfoContext(ctx, "layout saved", slog.String("breakpoint", string(m.bp.Key)))
	m.track("edit_mode", map[string]any{"on": false})
	m.notify()
	return nil
}

// ToggleCardVisibility hides or shows a card and returns whether it is now
// hidden. It is available in every mode; stored geometry is untouched.
func (m *Manager) ToggleCardVisibility(ctx context.Context, id string) (bool, error) {
	hidden, err := m.vis.Toggle(ctx, id)
	if err != nil {
		return false, err
	}
	m.log.InfoContext(ctx, "card visibility changed", slog.String("card", id), slog.Bool("hidden", hidden))
	m.track("card_visibility", map[string]any{"hidden": hidden})
	m.notify()
	return hidden, nil
}

// ResetLayout regenerates every breakpoint, unhides all cards, drops
// history, and leaves the introductory view for good.
func (m *Manager) ResetLayout(ctx context.Context) {
	m.store.ResetToDefaults(ctx, nil)
	m.vis.Clear(ctx)
	m.history.Clear()
	m.preview = nil
	m.sess.DismissIntro()
	m.track("layout_reset", nil)
	m.notify()
}

// DismissIntro leaves the introductory view. It reports false when the view
// was not active.
func (m *Manager) DismissIntro(ctx context.Context) bool {
	if !m.sess.DismissIntro() {
		return false
	}
	m.log.InfoContext(ctx, "introductory view dismissed")
	m.track("intro_dismissed", nil)
	m.notify()
	return true
}

// OnViewportResize switches to the breakpoint for width and returns it.
// Layout for a breakpoint seen for the first time is generated.
func (m *Manager) OnViewportResize(ctx context.Context, width int) (domain.BreakpointKey, error) {
	m.width = width
	next := m.bps.Resolve(width)
	if next.Key == m.bp.Key {
		return next.Key, nil
	}
	if _, err := m.store.GetLayout(ctx, next.Key); err != nil {
		return m.bp.Key, err
	}
	m.log.DebugContext(ctx, "breakpoint changed", slog.String("from", string(m.bp.Key)), slog.String("to", string(next.Key)), slog.Int("width", width))
	m.bp = next
	m.preview = nil
	m.notify()
	return next.Key, nil
}

// OnCardMove commits a move gesture at the active breakpoint.
func (m *Manager) OnCardMove(ctx context.Context, id string, x, y int) error {
	return m.commit(ctx, id, func() ([]domain.LayoutEntry, error) {
		return m.store.ApplyMove(ctx, id, m.bp.Key, x, y)
	})
}

// OnCardResize commits a resize gesture at the active breakpoint.
func (m *Manager) OnCardResize(ctx context.Context, id string, w, h int) error {
	return m.commit(ctx, id, func() ([]domain.LayoutEntry, error) {
		return m.store.ApplyResize(ctx, id, m.bp.Key, w, h)
	})
}

func (m *Manager) commit(ctx context.Context, id string, apply func() ([]domain.LayoutEntry, error)) error {
	if !m.sess.EditMode() {
		return ErrNotEditing
	}
	if _, ok := m.store.Card(id); !ok {
		return fmt.Errorf("%w: %q", layoutstore.ErrUnknownCard, id)
	}
	before, err := m.store.GetLayout(ctx, m.bp.Key)
	if err != nil {
		return err
	}
	after, err := apply()
	if err != nil {
		return err
	}
	m.preview = nil
	if !grid.SameGeometry(before, after) {
		m.history.Push(undo.Snapshot{Key: string(m.bp.Key), Blob: encodeEntries(before), TS: time.Now()})
	}
	m.notify()
	return nil
}

// Undo restores the layout before the last committed gesture at the active breakpoint.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	return m.travel(ctx, m.history.Undo)
}

// Redo reapplies the last undone gesture at the active breakpoint.
func (m *Manager) Redo(ctx context.Context) (bool, error) {
	return m.travel(ctx, m.history.Redo)
}

func (m *Manager) travel(ctx context.Context, step func(string, []byte) (undo.Snapshot, bool)) (bool, error) {
	if !m.sess.EditMode() {
		return false, ErrNotEditing
	}
	cur, err := m.store.GetLayout(ctx, m.bp.Key)
	if err != nil {
		return false, err
	}
	snap, ok := step(string(m.bp.Key), encodeEntries(cur))
	if !ok {
		return false, nil
	}
	var entries []domain.LayoutEntry
	if err := json.Unmarshal(snap.Blob, &entries); err != nil {
		return false, fmt.Errorf("decode history: %w", err)
	}
	if err := m.store.Restore(ctx, m.bp.Key, entries); err != nil {
		return false, err
	}
	m.preview = nil
	m.notify()
	return true, nil
}

func encodeEntries(entries []domain.LayoutEntry) []byte {
	b, _ := json.Marshal(entries)
	return b
}

// Cards lists every card with its hidden flag, in definition order, for the
// management dialog.
func (m *Manager) Cards() []CardState {
	cards := m.store.Cards()
	out := make([]CardState, len(cards))
	for i, c := range cards {
		out[i] = CardState{ID: c.ID, Title: c.Title, Hidden: m.vis.IsHidden(c.ID)}
	}
	return out
}

// CardState is one row of the management dialog.
type CardState struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Hidden bool   `json:"hidden"`
}

// Card returns a card definition, including its content.
func (m *Manager) Card(id string) (domain.Card, bool) { return m.store.Card(id) }
