//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"gridboard/internal/dashboard"
	"gridboard/internal/export"
	applog "gridboard/internal/log"
)

// Run opens the dashboard window and blocks until it is closed. All manager
// calls happen on the Fyne event goroutine.
func Run(opts Options) error {
	if opts.Manager == nil {
		return errors.New("ui: manager is required")
	}
	m := opts.Manager
	ctx := context.Background()
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	a := app.NewWithID("gridboard")
	title := opts.Title
	if title == "" {
		title = "Gridboard"
	}
	w := a.NewWindow(title)
	prefs := a.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1280), 480)),
		float32(max(prefs.IntWithFallback("window.height", 800), 360)),
	))

	status := widget.NewLabel("")
	board := NewBoard(m.View())
	board.OnWidth = func(width int) {
		if _, err := m.OnViewportResize(ctx, width); err != nil {
			l.Warn("viewport resize failed", slog.Any("err", err))
		}
	}
	board.OnGesture = func(g dashboard.Gesture) {
		if err := m.Handle(ctx, g); err != nil {
			l.Debug("gesture rejected", slog.String("gesture", g.String()), slog.Any("err", err))
		}
	}

	editBtn := widget.NewButton("Edit Layout", nil)
	undoBtn := widget.NewButton("Undo", func() {
		if _, err := m.Undo(ctx); err != nil {
			dialog.ShowError(err, w)
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if _, err := m.Redo(ctx); err != nil {
			dialog.ShowError(err, w)
		}
	})
	editBtn.OnTapped = func() {
		if _, err := m.ToggleEditMode(ctx); err != nil {
			dialog.ShowError(err, w)
		}
	}
	manageBtn := widget.NewButton("Manage Cards", func() { showManageDialog(ctx, w, m) })
	resetBtn := widget.NewButton("Reset Layout", func() {
		dialog.ShowConfirm("Reset Layout", "Restore the default layout and show all cards?", func(ok bool) {
			if ok {
				m.ResetLayout(ctx)
			}
		}, w)
	})
	exportBtn := widget.NewButton("Export SVG", func() {
		name := fmt.Sprintf("dashboard-%s.svg", time.Now().Format("20060102-150405"))
		path := filepath.Join(opts.ExportDir, name)
		if err := export.WriteFile(m.View(), path, export.Options{IncludeBody: true, Title: title}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + path)
	})
	introBanner := container.NewHBox(
		widget.NewLabel("Showing a simplified view to get you started."),
		widget.NewButton("Show all cards", func() { m.DismissIntro(ctx) }),
	)

	apply := func(v dashboard.View) {
		board.SetView(v)
		if v.EditMode {
			editBtn.SetText("Save Layout")
			undoBtn.Enable()
			redoBtn.Enable()
		} else {
			editBtn.SetText("Edit Layout")
			undoBtn.Disable()
			redoBtn.Disable()
		}
		if v.Simplified {
			editBtn.Disable()
			introBanner.Show()
		} else {
			editBtn.Enable()
			introBanner.Hide()
		}
		status.SetText(fmt.Sprintf("%s · %d columns · %s", v.Breakpoint, v.Columns, v.Mode))
	}
	m.OnChange(apply)
	apply(m.View())

	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		if e.Name == fyne.KeyEscape {
			board.CancelDrag()
		}
	})

	toolbar := container.NewHBox(editBtn, undoBtn, redoBtn, manageBtn, resetBtn, exportBtn)
	top := container.NewVBox(toolbar, introBanner)
	w.SetContent(container.NewBorder(top, status, nil, nil, container.NewVScroll(board)))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	return nil
}

func showManageDialog(ctx context.Context, w fyne.Window, m *dashboard.Manager) {
	rows := container.NewVBox()
	for _, c := range m.Cards() {
		id := c.ID
		chk := widget.NewCheck(c.Title, nil)
		chk.SetChecked(!c.Hidden)
		chk.OnChanged = func(bool) {
			if _, err := m.ToggleCardVisibility(ctx, id); err != nil {
				dialog.ShowError(err, w)
			}
		}
		rows.Add(chk)
	}
	d := dialog.NewCustom("Manage Dashboard Cards", "Close", container.NewVScroll(rows), w)
	d.Resize(fyne.NewSize(360, 420))
	d.Show()
}

// Board paints a dashboard view and turns drags into gestures.
type Board struct {
	widget.BaseWidget

	view dashboard.View
	drag *Drag

	lastWidth int
	// OnWidth is called when the board's width changes.
	OnWidth func(width int)
	// OnGesture receives drag feedback and commits.
	OnGesture func(g dashboard.Gesture)
}

// NewBoard returns a board showing v.
func NewBoard(v dashboard.View) *Board {
	b := &Board{view: v}
	b.ExtendBaseWidget(b)
	return b
}

// SetView replaces the painted view.
func (b *Board) SetView(v dashboard.View) {
	b.view = v
	b.Refresh()
}

func (b *Board) Dragged(e *fyne.DragEvent) {
	x, y := float64(e.Position.X), float64(e.Position.Y)
	if b.drag == nil {
		if !b.view.EditMode {
			return
		}
		sx, sy := x-float64(e.Dragged.DX), y-float64(e.Dragged.DY)
		d, ok := BeginDrag(b.view, sx, sy)
		if !ok {
			return
		}
		b.drag = d
	}
	if g, changed := b.drag.Update(x, y); changed && b.OnGesture != nil {
		b.OnGesture(g)
	}
}

func (b *Board) DragEnd() {
	if b.drag == nil {
		return
	}
	g := b.drag.End()
	b.drag = nil
	if b.OnGesture != nil {
		b.OnGesture(g)
	}
}

// CancelDrag drops an in-flight gesture.
func (b *Board) CancelDrag() {
	if b.drag == nil {
		return
	}
	g := b.drag.End()
	g.Kind = dashboard.Cancel
	b.drag = nil
	if b.OnGesture != nil {
		b.OnGesture(g)
	}
}

func (b *Board) MinSize() fyne.Size {
	return fyne.NewSize(320, float32(b.view.PixelHeight()))
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{b: b, bg: canvas.NewRectangle(color.RGBA{R: 236, G: 239, B: 244, A: 255})}
	r.rebuild()
	return r
}

type boardRenderer struct {
	b       *Board
	bg      *canvas.Rectangle
	cards   []cardVisual
	objects []fyne.CanvasObject
}

type cardVisual struct {
	item  dashboard.Item
	box   *canvas.Rectangle
	title *canvas.Text
	grip  *canvas.Rectangle
}

func (r *boardRenderer) rebuild() {
	v := r.b.view
	r.cards = r.cards[:0]
	r.objects = []fyne.CanvasObject{r.bg}
	stroke := color.RGBA{R: 40, G: 44, B: 52, A: 255}
	if v.Previewing {
		stroke = color.RGBA{R: 0, G: 120, B: 255, A: 255}
	}
	for _, it := range v.Visible() {
		box := canvas.NewRectangle(color.White)
		box.StrokeColor = stroke
		box.StrokeWidth = 1
		box.CornerRadius = 6
		title := canvas.NewText(it.Title, color.Black)
		title.TextStyle = fyne.TextStyle{Bold: true}
		grip := canvas.NewRectangle(color.RGBA{R: 0, G: 120, B: 255, A: 200})
		if !v.EditMode {
			grip.Hide()
		}
		r.cards = append(r.cards, cardVisual{item: it, box: box, title: title, grip: grip})
		r.objects = append(r.objects, box, title, grip)
	}
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if w := int(size.Width); w > 0 && w != r.b.lastWidth {
		r.b.lastWidth = w
		if r.b.OnWidth != nil {
			// Resizing re-enters through SetView; defer so layout finishes first.
			fyne.Do(func() { r.b.OnWidth(w) })
		}
	}
	v := r.b.view
	for _, c := range r.cards {
		x, y, w, h := v.PixelRect(c.item.Placement)
		c.box.Move(fyne.NewPos(float32(x), float32(y)))
		c.box.Resize(fyne.NewSize(float32(w), float32(h)))
		c.title.Move(fyne.NewPos(float32(x)+8, float32(y)+6))
		c.grip.Move(fyne.NewPos(float32(x+w-HandleSize), float32(y+h-HandleSize)))
		c.grip.Resize(fyne.NewSize(HandleSize, HandleSize))
	}
}

func (r *boardRenderer) MinSize() fyne.Size           { return r.b.MinSize() }
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) Destroy()                     {}

func (r *boardRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.b.Size())
	canvas.Refresh(r.b)
}
