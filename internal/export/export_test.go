/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridboard/internal/dashboard"
	"gridboard/internal/domain"
	"gridboard/internal/storage"
)

func sampleView(t *testing.T) dashboard.View {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemory()
	// Mark the visit so the full card set renders.
	if err := kv.Set(ctx, "dashboard-visited", "true"); err != nil {
		t.Fatalf("seed visited: %v", err)
	}
	cards := []domain.Card{
		{ID: "a", Title: "Ticket <Sales>", Content: domain.ContentFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, "line one\nline & two\n")
			return err
		})},
		{ID: "b", Title: "Revenue"},
		{ID: "c", Title: "Check-ins"},
	}
	m, err := dashboard.New(ctx, kv, cards, dashboard.Options{Width: 1280})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.ToggleCardVisibility(ctx, "c"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	return m.View()
}

func TestPNGDimensions(t *testing.T) {
	v := sampleView(t)
	var buf bytes.Buffer
	if err := PNG(&buf, v, Options{IncludeBody: true}); err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != v.Width {
		t.Fatalf("width = %d, want %d", b.Dx(), v.Width)
	}
	if b.Dy() < int(v.PixelHeight()) {
		t.Fatalf("height %d smaller than view %g", b.Dy(), v.PixelHeight())
	}
	// The first card's top-left corner carries the stroke color.
	x, y, _, _ := v.PixelRect(v.Items[0].Placement)
	r, g, bl, _ := img.At(int(x), int(y)).RGBA()
	if r>>8 != 40 || g>>8 != 44 || bl>>8 != 52 {
		t.Fatalf("unexpected corner color %d,%d,%d", r>>8, g>>8, bl>>8)
	}
}

func TestSVGContent(t *testing.T) {
	v := sampleView(t)
	var buf bytes.Buffer
	if err := SVG(&buf, v, Options{IncludeBody: true, IncludeHidden: true, Title: "Fest & Co"}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	s := buf.String()
	for _, want := range []string{"<svg", "Ticket &lt;Sales&gt;", "line &amp; two", "stroke-dasharray", "<title>Fest &amp; Co</title>"} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
	if strings.Count(s, "<clipPath") != 2 {
		t.Fatalf("expected two visible cards, got %d", strings.Count(s, "<clipPath"))
	}
}

func TestSVGSkipsHiddenByDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, sampleView(t), Options{}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if strings.Contains(buf.String(), "stroke-dasharray") {
		t.Fatalf("hidden card should not be drawn")
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sampleView(t), Options{IncludeBody: true, IncludeHidden: true}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestWriteFileByExtension(t *testing.T) {
	v := sampleView(t)
	dir := t.TempDir()
	for _, name := range []string{"out.png", "nested/out.PDF", "out.svg"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(v, path, Options{}); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil || st.Size() == 0 {
			t.Fatalf("%s: missing or empty (err=%v)", name, err)
		}
	}
	if err := WriteFile(v, filepath.Join(dir, "out.gif"), Options{}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestEmptyViewStillRenders(t *testing.T) {
	v := dashboard.View{Width: 0, Margin: 0, RowHeight: 60, Columns: 12}
	var buf bytes.Buffer
	if err := PNG(&buf, v, Options{}); err != nil {
		t.Fatalf("png: %v", err)
	}
}
