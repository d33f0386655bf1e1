/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gridboard/internal/domain"
)

const watchYAML = `cards:
  - id: one
    title: One
`

const watchYAML2 = `cards:
  - id: one
    title: One
  - id: two
    title: Two
`

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.yaml")
	if err := os.WriteFile(path, []byte(watchYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []domain.Card, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(c []domain.Card) { got <- c }, nil)
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cards := <-got:
			if len(cards) != 2 || cards[1].ID != "two" {
				t.Fatalf("reloaded cards = %+v", cards)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte(watchYAML2), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchRunsOneReloadAtATime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.yaml")
	if err := os.WriteFile(path, []byte(watchYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var running, overlapped, calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 5*time.Millisecond, func([]domain.Card) {
			if running.Add(1) > 1 {
				overlapped.Store(1)
			}
			time.Sleep(50 * time.Millisecond)
			running.Add(-1)
			calls.Add(1)
		}, nil)
	}()

	// Writes arrive faster than a reload finishes.
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte(watchYAML2), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if calls.Load() < 3 {
		t.Fatalf("only %d reloads observed", calls.Load())
	}
	if overlapped.Load() != 0 {
		t.Fatal("reloads ran concurrently")
	}
}

func TestWatchReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.yaml")
	if err := os.WriteFile(path, []byte(watchYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	go func() {
		_ = Watch(ctx, path, 20*time.Millisecond, func([]domain.Card) {
			t.Error("onChange called for a broken catalog")
		}, func(err error) { errs <- err })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-errs:
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("cards: []\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no error observed")
		}
	}
}

func TestWatchArgs(t *testing.T) {
	if err := Watch(context.Background(), "", 0, func([]domain.Card) {}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := Watch(context.Background(), "x.yaml", 0, nil, nil); err == nil {
		t.Fatal("expected error for nil onChange")
	}
}

func TestParseTOML(t *testing.T) {
	src := `
[[cards]]
id = "ticket-sales"
title = "Tickets"
min_w = 3
min_h = 2
default_size = { w = 6, h = 4 }
body = "hello"

[[cards]]
id = "alerts"
`
	cards, err := ParseTOML([]byte(src))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards", len(cards))
	}
	c := cards[0]
	if c.ID != "ticket-sales" || c.MinW != 3 || c.MinH != 2 || c.DefaultSize != (domain.Size{W: 6, H: 4}) {
		t.Fatalf("card = %+v", c)
	}
	if cards[1].Title != "alerts" {
		t.Fatalf("title default = %q", cards[1].Title)
	}
}

func TestLoadTOMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.TOML")
	if err := os.WriteFile(path, []byte("[[cards]]\nid = \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cards, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "a" {
		t.Fatalf("cards = %+v", cards)
	}
}
