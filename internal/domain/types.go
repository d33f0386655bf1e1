/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model of the dashboard card layout engine.
// Geometry is expressed in integer grid cells; pixel mapping is a host concern.

import "io"

// BreakpointKey names a viewport-width tier, e.g. "lg" or "xs".
type BreakpointKey string

// Size is a width/height pair in grid cells.
type Size struct {
	W int `json:"w" yaml:"w" toml:"w"`
	H int `json:"h" yaml:"h" toml:"h"`
}

// Content is the renderable body of a card. The engine never inspects it;
// hosts call Render when painting the card.
type Content interface {
	Render(w io.Writer) error
}

// ContentFunc adapts a plain function to Content.
type ContentFunc func(w io.Writer) error

func (f ContentFunc) Render(w io.Writer) error { return f(w) }

// Card is a static widget definition supplied by the host at mount time.
// Identity (ID) never changes during a session.
type Card struct {
	ID          string
	Title       string
	Content     Content
	MinW        int
	MinH        int
	DefaultSize Size
}

// LayoutEntry places one card at one breakpoint.
type LayoutEntry struct {
	CardID string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
}

// Snapshot maps each breakpoint to its ordered entries.
type Snapshot map[BreakpointKey][]LayoutEntry

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = append([]LayoutEntry(nil), v...)
	}
	return out
}

// SessionState is the per-session mode. EditMode is never persisted.
type SessionState struct {
	EditMode   bool `json:"editMode"`
	FirstVisit bool `json:"firstVisit"`
}
