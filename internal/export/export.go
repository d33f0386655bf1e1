/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a dashboard view as a wireframe in PNG, PDF or SVG.
// Geometry comes from the view's pixel mapping; one pixel is one point in PDF.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gridboard/internal/dashboard"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

func (c Color) isZero() bool { return c == Color{} }

// Options controls all exporters. Zero values fall back to defaults.
//
//nolint:revive // keep options grouped and explicit for clarity
type Options struct {
	Background  Color
	CardFill    Color
	CardStroke  Color
	HiddenColor Color
	TextColor   Color
	StrokeWidth float64
	// IncludeBody renders each card's content below its title.
	IncludeBody bool
	// IncludeHidden outlines hidden cards at their stored geometry.
	IncludeHidden bool
	Title         string
}

func (o Options) withDefaults() Options {
	if o.Background.isZero() {
		o.Background = Color{R: 255, G: 255, B: 255, A: 255}
	}
	if o.CardFill.isZero() {
		o.CardFill = Color{R: 244, G: 246, B: 250, A: 255}
	}
	if o.CardStroke.isZero() {
		o.CardStroke = Color{R: 40, G: 44, B: 52, A: 255}
	}
	if o.HiddenColor.isZero() {
		o.HiddenColor = Color{R: 200, G: 0, B: 0, A: 255}
	}
	if o.TextColor.isZero() {
		o.TextColor = Color{A: 255}
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1
	}
	return o
}

// Format is an output file type.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// WriteFile exports v to path, choosing the format from the extension.
func WriteFile(v dashboard.View, path string, opt Options) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	switch f {
	case FormatPNG:
		err = PNG(out, v, opt)
	case FormatPDF:
		err = PDF(out, v, opt)
	default:
		err = SVG(out, v, opt)
	}
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}

// canvasSize is the page size for v, never smaller than one margin square.
func canvasSize(v dashboard.View) (w, h float64) {
	w = float64(v.Width)
	h = v.PixelHeight()
	minSide := math.Max(float64(2*v.Margin), 1)
	return math.Max(w, minSide), math.Max(h, minSide)
}

// rect is one card to paint, already mapped to pixels.
type rect struct {
	X, Y, W, H float64
	Title      string
	Body       []string
	Hidden     bool
}

func rects(v dashboard.View, opt Options) []rect {
	out := make([]rect, 0, len(v.Items))
	for _, it := range v.Items {
		if it.Hidden && !opt.IncludeHidden {
			continue
		}
		x, y, w, h := v.PixelRect(it.Placement)
		r := rect{X: x, Y: y, W: w, H: h, Title: it.Title, Hidden: it.Hidden}
		if opt.IncludeBody && it.Card.Content != nil {
			var sb strings.Builder
			if err := it.Card.Content.Render(&sb); err == nil {
				r.Body = wrap(bodyFace, sb.String(), w-2*textPad)
			}
		}
		out = append(out, r)
	}
	return out
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
