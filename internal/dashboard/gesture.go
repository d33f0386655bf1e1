/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gridboard/internal/domain"
)

// GestureKind separates feedback events from the event that ends a gesture.
type GestureKind int

const (
	// Intermediate events update the preview only; nothing is persisted.
	Intermediate GestureKind = iota
	// Commit ends the gesture: clamp, compact, persist.
	Commit
	// Cancel drops the preview.
	Cancel
)

// GestureOp is what the gesture does to the card.
type GestureOp int

const (
	Move GestureOp = iota
	Resize
)

// Gesture is one drag or resize event. A and B are x,y for Move and w,h for Resize.
type Gesture struct {
	Kind   GestureKind
	Op     GestureOp
	CardID string
	A, B   int
}

func (g Gesture) String() string {
	op := "move"
	if g.Op == Resize {
		op = "resize"
	}
	kind := [...]string{"intermediate", "commit", "cancel"}
	k := "unknown"
	if int(g.Kind) < len(kind) && g.Kind >= 0 {
		k = kind[g.Kind]
	}
	return fmt.Sprintf("%s %s %s(%d,%d)", k, op, g.CardID, g.A, g.B)
}

// Handle applies one gesture event.
func (m *Manager) Handle(ctx context.Context, g Gesture) error {
	if !m.sess.EditMode() {
		return ErrNotEditing
	}
	switch g.Kind {
	case Commit:
		if g.Op == Resize {
			return m.OnCardResize(ctx, g.CardID, g.A, g.B)
		}
		return m.OnCardMove(ctx, g.CardID, g.A, g.B)
	case Intermediate:
		var (
			entries []domain.LayoutEntry
			err     error
		)
		if g.Op == Resize {
			entries, err = m.store.PreviewResize(ctx, g.CardID, m.bp.Key, g.A, g.B)
		} else {
			entries, err = m.store.PreviewMove(ctx, g.CardID, m.bp.Key, g.A, g.B)
		}
		if err != nil {
			return err
		}
		m.preview = entries
		m.notify()
		return nil
	case Cancel:
		if m.preview != nil {
			m.preview = nil
			m.notify()
		}
		return nil
	default:
		return fmt.Errorf("unknown gesture kind %d", g.Kind)
	}
}

// Run consumes gestures until in is closed or ctx is done. Failed gestures
// are logged and skipped. It returns ctx.Err() when cancelled and nil when
// the channel closes.
func (m *Manager) Run(ctx context.Context, in <-chan Gesture) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case g, ok := <-in:
			if !ok {
				return nil
			}
			if err := m.Handle(ctx, g); err != nil {
				lvl := slog.LevelWarn
				if errors.Is(err, ErrNotEditing) {
					lvl = slog.LevelDebug
				}
				m.log.Log(ctx, lvl, "gesture rejected", slog.String("gesture", g.String()), slog.Any("err", err))
			}
		}
	}
}
