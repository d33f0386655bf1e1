/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dashboard

import (
	"gridboard/internal/domain"
	"gridboard/internal/grid"
)

// Item is one card as the host should paint it. Entry is the stored
// geometry; Placement is where the card is drawn once hidden cards are taken
// out and the rest compacted. Hidden items keep Placement equal to Entry.
type Item struct {
	Card      domain.Card        `json:"-"`
	CardID    string             `json:"id"`
	Title     string             `json:"title"`
	Entry     domain.LayoutEntry `json:"layout"`
	Placement domain.LayoutEntry `json:"placement"`
	Hidden    bool               `json:"hidden"`
}

// View is the render output for the active breakpoint.
type View struct {
	Breakpoint domain.BreakpointKey `json:"breakpoint"`
	Columns    int                  `json:"columns"`
	Width      int                  `json:"width"`
	RowHeight  int                  `json:"rowHeight"`
	Margin     int                  `json:"margin"`
	Mode       Mode                 `json:"mode"`
	EditMode   bool                 `json:"editMode"`
	FirstVisit bool                 `json:"firstVisit"`
	Simplified bool                 `json:"simplified"`
	Previewing bool                 `json:"previewing"`
	// Items lists visible cards in reading order, then hidden cards in
	// definition order.
	Items []Item `json:"items"`
}

// View computes the current render output. It never writes to storage.
func (m *Manager) View() View {
	st := m.sess.State()
	v := View{
		Breakpoint: m.bp.Key,
		Columns:    m.bp.Columns,
		Width:      m.width,
		RowHeight:  m.rowHeight,
		Margin:     m.margin,
		Mode:       m.Mode(),
		EditMode:   st.EditMode,
		FirstVisit: st.FirstVisit,
		Simplified: m.sess.Simplified(),
		Previewing: m.preview != nil,
	}
	entries := m.preview
	if entries == nil {
		entries, _ = m.store.Layout(m.bp.Key)
	}
	byID := make(map[string]domain.LayoutEntry, len(entries))
	for _, e := range entries {
		byID[e.CardID] = e
	}

	cards := m.store.Cards()
	if v.Simplified && len(cards) > m.introN {
		// The introductory view ignores stored visibility.
		cards = cards[:m.introN]
	}
	var visible []domain.LayoutEntry
	var hidden []Item
	for _, c := range cards {
		e, ok := byID[c.ID]
		if !ok {
			continue
		}
		if !v.Simplified && m.vis.IsHidden(c.ID) {
			hidden = append(hidden, Item{Card: c, CardID: c.ID, Title: c.Title, Entry: e, Placement: e, Hidden: true})
			continue
		}
		visible = append(visible, e)
	}
	cardByID := make(map[string]domain.Card, len(cards))
	for _, c := range cards {
		cardByID[c.ID] = c
	}
	v.Items = make([]Item, 0, len(visible)+len(hidden))
	for _, p := range grid.Compact(visible) {
		c := cardByID[p.CardID]
		v.Items = append(v.Items, Item{Card: c, CardID: c.ID, Title: c.Title, Entry: byID[c.ID], Placement: p})
	}
	v.Items = append(v.Items, hidden...)
	return v
}

// Visible returns the items to paint.
func (v View) Visible() []Item {
	out := make([]Item, 0, len(v.Items))
	for _, it := range v.Items {
		if !it.Hidden {
			out = append(out, it)
		}
	}
	return out
}

// Rows is the height of the painted grid in rows.
func (v View) Rows() int {
	rows := 0
	for _, it := range v.Visible() {
		rows = max(rows, it.Placement.Y+it.Placement.H)
	}
	return rows
}

// ColumnWidth is the pixel width of one grid column, margins excluded.
func (v View) ColumnWidth() float64 {
	if v.Columns <= 0 {
		return 0
	}
	w := float64(v.Width-v.Margin*(v.Columns+1)) / float64(v.Columns)
	return max(w, 1)
}

// PixelRect maps a placement to pixels: columns of ColumnWidth and rows of
// RowHeight separated by Margin.
func (v View) PixelRect(e domain.LayoutEntry) (x, y, w, h float64) {
	cw := v.ColumnWidth()
	m := float64(v.Margin)
	x = m + float64(e.X)*(cw+m)
	y = m + float64(e.Y)*(float64(v.RowHeight)+m)
	w = float64(e.W)*cw + float64(e.W-1)*m
	h = float64(e.H)*float64(v.RowHeight) + float64(e.H-1)*m
	return x, y, w, h
}

// PixelHeight is the total painted height including margins.
func (v View) PixelHeight() float64 {
	rows := v.Rows()
	return float64(v.Margin) + float64(rows)*(float64(v.RowHeight)+float64(v.Margin))
}
