/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// bodyFace measures body text for every format so that PNG, PDF and SVG
// break lines at the same places.
var bodyFace font.Face = basicfont.Face7x13

// wrap breaks text on spaces so that no line is wider than maxWidth pixels.
// Explicit newlines are kept. A single word wider than maxWidth gets a line
// of its own. maxWidth <= 0 disables wrapping.
func wrap(face font.Face, text string, maxWidth float64) []string {
	d := &font.Drawer{Face: face}
	adv := func(s string) float64 { return float64(d.MeasureString(s) >> 6) }
	space := adv(" ")

	var lines []string
	for _, para := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		var cur strings.Builder
		var curW float64
		for _, word := range strings.Fields(para) {
			w := adv(word)
			if cur.Len() > 0 && maxWidth > 0 && curW+space+w > maxWidth {
				lines = append(lines, cur.String())
				cur.Reset()
				curW = 0
			}
			if cur.Len() > 0 {
				cur.WriteByte(' ')
				curW += space
			}
			cur.WriteString(word)
			curW += w
		}
		lines = append(lines, cur.String())
	}
	return lines
}
