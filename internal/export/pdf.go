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

	"github.com/jung-kurt/gofpdf"

	"gridboard/internal/dashboard"
)

// PDF writes v as a single-page vector PDF sized to the view. Units are
// points, one per view pixel. Text uses built-in Helvetica so no fonts are
// embedded.
func PDF(w io.Writer, v dashboard.View, opt Options) error {
	opt = opt.withDefaults()
	pw, ph := canvasSize(v)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	title := opt.Title
	if title == "" {
		title = fmt.Sprintf("Dashboard (%s)", v.Breakpoint)
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Gridboard", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	setFillColor(pdf, opt.Background)
	pdf.Rect(0, 0, pw, ph, "F")

	const titleSize, bodySize = 11.0, 8.0
	for _, r := range rects(v, opt) {
		pdf.SetLineWidth(opt.StrokeWidth)
		if r.Hidden {
			setDrawColor(pdf, opt.HiddenColor)
			pdf.SetDashPattern([]float64{4, 2}, 0)
			pdf.Rect(r.X, r.Y, r.W, r.H, "D")
			pdf.SetDashPattern(nil, 0)
			continue
		}
		setDrawColor(pdf, opt.CardStroke)
		setFillColor(pdf, opt.CardFill)
		pdf.Rect(r.X, r.Y, r.W, r.H, "FD")

		pdf.ClipRect(r.X, r.Y, r.W, r.H, false)
		setTextColor(pdf, opt.TextColor)
		cy := r.Y + textPad + titleSize
		pdf.SetFont("Helvetica", "B", titleSize)
		pdf.Text(r.X+textPad, cy, r.Title)
		pdf.SetFont("Helvetica", "", bodySize)
		for _, line := range r.Body {
			cy += bodySize * 1.3
			if cy > r.Y+r.H {
				break
			}
			pdf.Text(r.X+textPad, cy, line)
		}
		pdf.ClipEnd()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
