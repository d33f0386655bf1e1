/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog provides card definition sets for the dashboard: a built-in
// event-analytics catalog and user card files in YAML or TOML.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gridboard/internal/domain"
	applog "gridboard/internal/log"
)

// File is the on-disk shape of a YAML card catalog.
//
//	cards:
//	  - id: ticket-sales
//	    title: Ticket Sales Trend
//	    min_w: 3
//	    min_h: 2
//	    default_size: {w: 6, h: 4}
//	    body: |
//	      free text shown inside the card
//
// Files ending in .toml use the same fields under [[cards]].
type File struct {
	Cards []CardSpec `yaml:"cards" toml:"cards"`
}

// CardSpec describes one card in a catalog file.
type CardSpec struct {
	ID          string      `yaml:"id" toml:"id"`
	Title       string      `yaml:"title" toml:"title"`
	MinW        int         `yaml:"min_w,omitempty" toml:"min_w"`
	MinH        int         `yaml:"min_h,omitempty" toml:"min_h"`
	DefaultSize domain.Size `yaml:"default_size,omitempty" toml:"default_size"`
	Body        string      `yaml:"body,omitempty" toml:"body"`
}

// Text is static card content.
type Text string

func (t Text) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

// Load reads a catalog from path, YAML or TOML by extension.
func Load(path string) ([]domain.Card, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "load").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cards []domain.Card
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cards, err = ParseTOML(b)
	} else {
		cards, err = Parse(b)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Info("catalog loaded", slog.Int("cards", len(cards)))
	return cards, nil
}

// Parse decodes a YAML catalog. IDs must be non-empty and unique; titles
// default to the id.
func Parse(data []byte) ([]domain.Card, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.build()
}

// ParseTOML is Parse for TOML catalogs.
func ParseTOML(data []byte) ([]domain.Card, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.build()
}

func (f File) build() ([]domain.Card, error) {
	if len(f.Cards) == 0 {
		return nil, errors.New("catalog has no cards")
	}
	seen := make(map[string]bool, len(f.Cards))
	out := make([]domain.Card, 0, len(f.Cards))
	for i, c := range f.Cards {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("card %d: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("card %q: duplicate id", id)
		}
		seen[id] = true
		if c.MinW < 0 || c.MinH < 0 || c.DefaultSize.W < 0 || c.DefaultSize.H < 0 {
			return nil, fmt.Errorf("card %q: sizes must not be negative", id)
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = id
		}
		out = append(out, domain.Card{
			ID:          id,
			Title:       title,
			Content:     Text(c.Body),
			MinW:        c.MinW,
			MinH:        c.MinH,
			DefaultSize: c.DefaultSize,
		})
	}
	return out, nil
}

// Encode renders cards back into catalog YAML. Content is rendered to text.
func Encode(cards []domain.Card) ([]byte, error) {
	f := File{Cards: make([]CardSpec, 0, len(cards))}
	for _, c := range cards {
		spec := CardSpec{ID: c.ID, Title: c.Title, MinW: c.MinW, MinH: c.MinH, DefaultSize: c.DefaultSize}
		if c.Content != nil {
			var sb strings.Builder
			if err := c.Content.Render(&sb); err != nil {
				return nil, fmt.Errorf("render %q: %w", c.ID, err)
			}
			spec.Body = sb.String()
		}
		f.Cards = append(f.Cards, spec)
	}
	return yaml.Marshal(&f)
}

// Resolve returns the catalog at path, or the built-in one when path is empty.
func Resolve(path string) ([]domain.Card, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	return Load(path)
}
