/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gridboard/internal/dashboard"
)

const textPad = 6

// PNG rasterizes v at one pixel per view pixel. Hidden cards, when included,
// are outlined only.
func PNG(w io.Writer, v dashboard.View, opt Options) error {
	opt = opt.withDefaults()
	cw, ch := canvasSize(v)
	pixW := int(math.Ceil(cw))
	pixH := int(math.Ceil(ch))

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(opt.Background)}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	for _, r := range rects(v, opt) {
		x0 := int(math.Round(r.X))
		y0 := int(math.Round(r.Y))
		x1 := int(math.Round(r.X+r.W)) - 1
		y1 := int(math.Round(r.Y+r.H)) - 1
		if r.Hidden {
			strokeRect(img, x0, y0, x1, y1, toRGBA(opt.HiddenColor))
			continue
		}
		fillRect(img, x0, y0, x1, y1, toRGBA(opt.CardFill))
		strokeRect(img, x0, y0, x1, y1, toRGBA(opt.CardStroke))

		// Text is clipped to the card.
		clip, ok := img.SubImage(image.Rect(x0+1, y0+1, x1, y1)).(*image.RGBA)
		if !ok {
			continue
		}
		d := &font.Drawer{Dst: clip, Src: image.NewUniform(toRGBA(opt.TextColor)), Face: face}
		y := y0 + textPad + face.Metrics().Ascent.Ceil()
		d.Dot = fixed.P(x0+textPad, y)
		d.DrawString(r.Title)
		for _, line := range r.Body {
			y += lineH
			if y > y1 {
				break
			}
			d.Dot = fixed.P(x0+textPad, y)
			d.DrawString(line)
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func toRGBA(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
