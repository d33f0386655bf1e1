/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"gridboard/internal/dashboard"
)

// Zone is the part of a card under the pointer.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneBody
	ZoneResize
)

// HandleSize is the side of the square resize grip in the bottom-right corner.
const HandleSize = 14.0

// HitTest finds the visible card at pixel x,y.
func HitTest(v dashboard.View, x, y float64) (dashboard.Item, Zone) {
	for _, it := range v.Visible() {
		px, py, pw, ph := v.PixelRect(it.Placement)
		if x < px || y < py || x > px+pw || y > py+ph {
			continue
		}
		if x >= px+pw-HandleSize && y >= py+ph-HandleSize {
			return it, ZoneResize
		}
		return it, ZoneBody
	}
	return dashboard.Item{}, ZoneNone
}

// Drag turns pointer positions into grid gestures for one card. Offsets are
// measured in whole cells from where the drag started, applied to the stored
// geometry.
type Drag struct {
	item   dashboard.Item
	op     dashboard.GestureOp
	startX float64
	startY float64
	stepX  float64
	stepY  float64
	last   dashboard.Gesture
}

// BeginDrag starts a drag at x,y. It reports false when no card is there.
func BeginDrag(v dashboard.View, x, y float64) (*Drag, bool) {
	it, zone := HitTest(v, x, y)
	if zone == ZoneNone {
		return nil, false
	}
	d := &Drag{
		item:   it,
		op:     dashboard.Move,
		startX: x,
		startY: y,
		stepX:  v.ColumnWidth() + float64(v.Margin),
		stepY:  float64(v.RowHeight + v.Margin),
	}
	if zone == ZoneResize {
		d.op = dashboard.Resize
	}
	d.last = d.at(x, y, dashboard.Intermediate)
	return d, true
}

// CardID is the dragged card.
func (d *Drag) CardID() string { return d.item.CardID }

// Op reports whether the drag moves or resizes.
func (d *Drag) Op() dashboard.GestureOp { return d.op }

func (d *Drag) at(x, y float64, kind dashboard.GestureKind) dashboard.Gesture {
	dx := cells(x-d.startX, d.stepX)
	dy := cells(y-d.startY, d.stepY)
	g := dashboard.Gesture{Kind: kind, Op: d.op, CardID: d.item.CardID}
	e := d.item.Entry
	if d.op == dashboard.Resize {
		g.A, g.B = e.W+dx, e.H+dy
	} else {
		g.A, g.B = e.X+dx, e.Y+dy
	}
	return g
}

// Update returns the intermediate gesture for x,y and whether it differs
// from the previous one.
func (d *Drag) Update(x, y float64) (dashboard.Gesture, bool) {
	g := d.at(x, y, dashboard.Intermediate)
	changed := g != d.last
	d.last = g
	return g, changed
}

// End returns the commit gesture for the last position.
func (d *Drag) End() dashboard.Gesture {
	g := d.last
	g.Kind = dashboard.Commit
	return g
}

func cells(delta, step float64) int {
	if step <= 0 {
		return 0
	}
	return int(math.Round(delta / step))
}

// Options configure the desktop host.
type Options struct {
	Manager *dashboard.Manager
	// ExportDir receives wireframe exports; empty means the working directory.
	ExportDir string
	Title     string
}
