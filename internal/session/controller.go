/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session tracks the per-session dashboard mode: whether the layout
// is being edited, and whether this is the user's first visit.
package session

import (
	"context"
	"log/slog"

	"gridboard/internal/domain"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
)

// VisitedKey marks that the dashboard has been opened before.
const VisitedKey = "dashboard-visited"

// Controller holds the session mode. Edit mode is never persisted and starts
// off. First visit is decided once, in Start.
type Controller struct {
	editMode   bool
	firstVisit bool
	simplified bool
}

// Start reads the visited marker. When it is absent the session is a first
// visit: the marker is written at once and the simplified view is active
// until DismissIntro. A storage read failure is treated as a return visit.
func Start(ctx context.Context, kv storage.KV, namespace string) *Controller {
	l := applog.WithComponent("session").With(slog.String("namespace", namespace))
	key := storage.Key(namespace, VisitedKey)
	c := &Controller{}
	_, visited, err := kv.Get(ctx, key)
	if err != nil {
		l.Warn("read visited marker failed; assuming return visit", slog.Any("err", err))
		return c
	}
	if !visited {
		c.firstVisit = true
		c.simplified = true
		if err := kv.Set(ctx, key, "true"); err != nil {
			l.Warn("write visited marker failed", slog.Any("err", err))
		}
		l.Info("first visit; showing introductory cards")
	}
	return c
}

// State returns the session flags.
func (c *Controller) State() domain.SessionState {
	return domain.SessionState{EditMode: c.editMode, FirstVisit: c.firstVisit}
}

func (c *Controller) EditMode() bool { return c.editMode }

// FirstVisit is fixed for the session, even after DismissIntro.
func (c *Controller) FirstVisit() bool { return c.firstVisit }

// Simplified reports whether the introductory subset is being shown.
func (c *Controller) Simplified() bool { return c.simplified }

// CanEdit reports whether edit mode may be entered.
func (c *Controller) CanEdit() bool { return !c.simplified }

// SetEditMode switches edit mode and reports whether the switch happened.
// Entering edit mode is refused while simplified.
func (c *Controller) SetEditMode(on bool) bool {
	if on && c.simplified {
		return false
	}
	c.editMode = on
	return true
}

// DismissIntro leaves the simplified view for the rest of the session.
func (c *Controller) DismissIntro() bool {
	if !c.simplified {
		return false
	}
	c.simplified = false
	return true
}
