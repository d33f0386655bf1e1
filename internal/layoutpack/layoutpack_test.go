/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutpack

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gridboard/internal/catalog"
	"gridboard/internal/dashboard"
	"gridboard/internal/layoutstore"
	"gridboard/internal/storage"
)

func TestExportAndInstall(t *testing.T) {
	ctx := context.Background()
	src := storage.NewMemory()
	cards := catalog.Builtin()
	m, err := dashboard.New(ctx, src, cards, dashboard.Options{Namespace: "fest", Width: 1280})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if _, err := m.ToggleCardVisibility(ctx, cards[1].ID); err != nil {
		t.Fatalf("hide: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "packs", "fest.zip")
	n, err := Export(ctx, src, "fest", cards, zipPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 3 {
		t.Fatalf("exported %d files, want 3", n)
	}

	dst := storage.NewMemory()
	res, err := Install(ctx, dst, "copy", zipPath, false)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(res.Installed) != 2 || len(res.Skipped) != 0 || len(res.Cards) != len(cards) {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, key := range []string{layoutstore.LayoutKey, layoutstore.HiddenKey} {
		want, _, _ := src.Get(ctx, storage.Key("fest", key))
		got, ok, _ := dst.Get(ctx, storage.Key("copy", key))
		if !ok || got != want {
			t.Fatalf("%s: got %q want %q", key, got, want)
		}
	}

	m2, err := dashboard.New(ctx, dst, res.Cards, dashboard.Options{Namespace: "copy", Width: 1280})
	if err != nil {
		t.Fatalf("manager on copy: %v", err)
	}
	if cs := m2.Cards(); !cs[1].Hidden {
		t.Fatalf("hidden flag did not travel with the pack")
	}
}

func TestInstallSkipsExistingUnlessOverwrite(t *testing.T) {
	ctx := context.Background()
	src := storage.NewMemory()
	_ = src.Set(ctx, layoutstore.HiddenKey, `["a"]`)
	zipPath := filepath.Join(t.TempDir(), "p.zip")
	if _, err := Export(ctx, src, "", nil, zipPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	dst := storage.NewMemory()
	_ = dst.Set(ctx, layoutstore.HiddenKey, `["b"]`)
	res, err := Install(ctx, dst, "", zipPath, false)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(res.Skipped) != 1 || len(res.Installed) != 0 {
		t.Fatalf("expected skip, got %+v", res)
	}
	if v, _, _ := dst.Get(ctx, layoutstore.HiddenKey); v != `["b"]` {
		t.Fatalf("existing value overwritten: %s", v)
	}
	if _, err := Install(ctx, dst, "", zipPath, true); err != nil {
		t.Fatalf("install overwrite: %v", err)
	}
	if v, _, _ := dst.Get(ctx, layoutstore.HiddenKey); v != `["a"]` {
		t.Fatalf("overwrite did not apply: %s", v)
	}
}

func TestInstallRejectsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	zipPath := filepath.Join(t.TempDir(), "bad.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		HiddenName:        `["ok"]`,
		LayoutName:        `{"lg":[{"id":"a","x":-1,"y":0,"w":4,"h":3}]}`,
		"../../evil.json": `{}`,
	} {
		w, _ := zw.Create(name)
		_, _ = w.Write([]byte(body))
	}
	_ = zw.Close()
	_ = f.Close()

	dst := storage.NewMemory()
	if _, err := Install(ctx, dst, "", zipPath, true); !errors.Is(err, layoutstore.ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
	if len(dst.Keys()) != 0 {
		t.Fatalf("nothing should be written from a bad pack, got %v", dst.Keys())
	}
}

func TestArgumentErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Export(ctx, nil, "", nil, "x.zip"); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := Export(ctx, storage.NewMemory(), "", nil, " "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Install(ctx, storage.NewMemory(), "", filepath.Join(t.TempDir(), "missing.zip"), false); err == nil {
		t.Fatalf("expected error for missing pack")
	}
}
