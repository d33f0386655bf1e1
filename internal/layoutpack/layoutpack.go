/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layoutpack moves a dashboard's persisted state between stores as a
// zip archive: the layout snapshot, the hidden-card set and, optionally, the
// card catalog that produced them.
package layoutpack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gridboard/internal/catalog"
	"gridboard/internal/domain"
	"gridboard/internal/layoutstore"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
)

const (
	ManifestName = "layoutpack.manifest.txt"
	LayoutName   = "dashboard-layout.json"
	HiddenName   = "dashboard-hidden-cards.json"
	CatalogName  = "cards.yaml"
)

// member maps an archive entry to its storage key and validator.
type member struct {
	file     string
	key      string
	validate func(string) error
}

var members = []member{
	{LayoutName, layoutstore.LayoutKey, layoutstore.ValidateLayout},
	{HiddenName, layoutstore.HiddenKey, layoutstore.ValidateHidden},
}

// Export writes the namespace's stored layout and hidden set into a zip at
// destZipPath. Keys with no stored value are left out. When cards is
// non-empty the catalog is included as YAML.
func Export(ctx context.Context, kv storage.KV, namespace string, cards []domain.Card, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("layoutpack"), "export").With(slog.String("namespace", namespace))
	if kv == nil {
		return 0, errors.New("store is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("Gridboard Layout Pack\nCreated: %s\nNamespace: %s\n", time.Now().Format(time.RFC3339), namespace)
	if err := addFile(zw, ManifestName, manifest); err != nil {
		return 0, err
	}

	added := 0
	for _, m := range members {
		v, ok, err := kv.Get(ctx, storage.Key(namespace, m.key))
		if err != nil {
			return added, fmt.Errorf("read %s: %w", m.key, err)
		}
		if !ok {
			continue
		}
		if err := addFile(zw, m.file, v); err != nil {
			return added, err
		}
		added++
	}
	if len(cards) > 0 {
		b, err := catalog.Encode(cards)
		if err != nil {
			return added, err
		}
		if err := addFile(zw, CatalogName, string(b)); err != nil {
			return added, err
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("layout pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return added, nil
}

func addFile(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Result summarizes an Install.
type Result struct {
	Installed []string
	Skipped   []string
	// Cards is the packed catalog, nil when the pack has none.
	Cards []domain.Card
}

// Install writes the pack's payloads into kv under namespace. Existing
// values are kept unless overwrite is set. Every payload is validated before
// anything is written, so a bad pack changes nothing.
func Install(ctx context.Context, kv storage.KV, namespace, packZipPath string, overwrite bool) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("layoutpack"), "install").With(slog.String("namespace", namespace))
	var res Result
	if kv == nil {
		return res, errors.New("store is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return res, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return res, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	contents := map[string]string{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || f.Name == ManifestName {
			continue
		}
		if f.Name != LayoutName && f.Name != HiddenName && f.Name != CatalogName {
			l.Warn("skip unknown entry", slog.String("name", f.Name))
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return res, err
		}
		contents[f.Name] = b
	}
	for _, m := range members {
		if v, ok := contents[m.file]; ok {
			if err := m.validate(v); err != nil {
				return res, fmt.Errorf("%s: %w", m.file, err)
			}
		}
	}
	if v, ok := contents[CatalogName]; ok {
		cards, err := catalog.Parse([]byte(v))
		if err != nil {
			return res, fmt.Errorf("%s: %w", CatalogName, err)
		}
		res.Cards = cards
	}

	for _, m := range members {
		v, ok := contents[m.file]
		if !ok {
			continue
		}
		key := storage.Key(namespace, m.key)
		if !overwrite {
			if _, exists, err := kv.Get(ctx, key); err != nil {
				return res, fmt.Errorf("read %s: %w", key, err)
			} else if exists {
				l.Warn("skip existing value", slog.String("key", key))
				res.Skipped = append(res.Skipped, m.key)
				continue
			}
		}
		if err := kv.Set(ctx, key, v); err != nil {
			return res, fmt.Errorf("write %s: %w", key, err)
		}
		res.Installed = append(res.Installed, m.key)
	}
	l.Info("layout pack installed", slog.Int("installed", len(res.Installed)), slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

// readEntry reads one member, refusing anything larger than 4 MiB.
func readEntry(f *zip.File) (string, error) {
	const limit = 4 << 20
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(b) > limit {
		return "", fmt.Errorf("%s: entry too large", f.Name)
	}
	return string(b), nil
}
