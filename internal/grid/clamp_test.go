/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"testing"

	"gridboard/internal/domain"
)

var clampCard = domain.Card{ID: "k", MinW: 2, MinH: 2}

func TestClampResizeShrinksToRowRemainder(t *testing.T) {
	e := ClampResize(domain.LayoutEntry{CardID: "k", X: 8, Y: 0, W: 7, H: 3}, clampCard, 12)
	if e.X != 8 || e.W != 4 {
		t.Fatalf("ClampResize = %+v, want x=8 w=4", e)
	}
}

func TestClampResizeRaisesToMinimums(t *testing.T) {
	e := ClampResize(domain.LayoutEntry{CardID: "k", X: 0, Y: 0, W: 1, H: 0}, clampCard, 12)
	if e.W != 2 || e.H != 2 {
		t.Fatalf("ClampResize = %+v, want 2x2", e)
	}
}

func TestClampResizeSlidesWhenMinimumDoesNotFit(t *testing.T) {
	e := ClampResize(domain.LayoutEntry{CardID: "k", X: 11, Y: 0, W: 5, H: 2}, clampCard, 12)
	if e.X != 10 || e.W != 2 {
		t.Fatalf("ClampResize = %+v, want x=10 w=2", e)
	}
}

func TestClampMoveSlidesLeftKeepingWidth(t *testing.T) {
	e := ClampMove(domain.LayoutEntry{CardID: "k", X: 10, Y: -3, W: 4, H: 3}, clampCard, 12)
	if e.X != 8 || e.W != 4 || e.Y != 0 {
		t.Fatalf("ClampMove = %+v, want x=8 w=4 y=0", e)
	}
	e = ClampMove(domain.LayoutEntry{CardID: "k", X: -2, Y: 1, W: 4, H: 3}, clampCard, 12)
	if e.X != 0 {
		t.Fatalf("ClampMove negative x = %+v", e)
	}
}

func TestClampCapsMinimumAtColumns(t *testing.T) {
	wide := domain.Card{ID: "w", MinW: 6, MinH: 1}
	e := ClampMove(domain.LayoutEntry{CardID: "w", X: 0, Y: 0, W: 6, H: 1}, wide, 4)
	if e.W != 4 || e.X != 0 || !Valid(e, wide, 4) {
		t.Fatalf("ClampMove on narrow grid = %+v", e)
	}
}
