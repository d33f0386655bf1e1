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
	"io"
	"strings"

	"gridboard/internal/dashboard"
)

// SVG writes v as a standalone SVG document in view pixels.
func SVG(w io.Writer, v dashboard.View, opt Options) error {
	opt = opt.withDefaults()
	cw, ch := canvasSize(v)
	ew := &errWriter{w: w}

	ew.printf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	ew.printf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", cw, ch, cw, ch)
	if opt.Title != "" {
		ew.printf("  <title>%s</title>\n", escText(opt.Title))
	}
	ew.printf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", cw, ch, svgColor(opt.Background))

	for i, r := range rects(v, opt) {
		if r.Hidden {
			ew.printf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-dasharray=\"4 2\" data-card=\"%s\"/>\n",
				r.X, r.Y, r.W, r.H, svgColor(opt.HiddenColor), opt.StrokeWidth, escAttr(r.Title))
			continue
		}
		clipID := fmt.Sprintf("card-%d", i)
		ew.printf("  <clipPath id=\"%s\"><rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/></clipPath>\n", clipID, r.X, r.Y, r.W, r.H)
		ew.printf("  <g clip-path=\"url(#%s)\">\n", clipID)
		ew.printf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			r.X, r.Y, r.W, r.H, svgColor(opt.CardFill), svgColor(opt.CardStroke), opt.StrokeWidth)
		cy := r.Y + textPad + 12
		ew.printf("    <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"12\" font-weight=\"bold\" fill=\"%s\">%s</text>\n",
			r.X+textPad, cy, svgColor(opt.TextColor), escText(r.Title))
		for _, line := range r.Body {
			cy += 10.4
			ew.printf("    <text x=\"%g\" y=\"%g\" font-family=\"monospace\" font-size=\"8\" fill=\"%s\">%s</text>\n",
				r.X+textPad, cy, svgColor(opt.TextColor), escText(line))
		}
		ew.printf("  </g>\n")
	}
	ew.printf("</svg>\n")

	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

func svgColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }

func escText(s string) string { return textEscaper.Replace(s) }
