/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerKey: 10})
	key := "lg"
	// States go a -> b -> c; history holds a and b.
	m.Push(Snapshot{Key: key, Blob: []byte("a"), TS: time.Now()})
	m.Push(Snapshot{Key: key, Blob: []byte("b"), TS: time.Now()})
	if _, keys, total := m.Stats(); keys != 1 || total != 2 {
		t.Fatalf("expected 1 key and 2 snapshots, got keys=%d total=%d", keys, total)
	}
	s, ok := m.Undo(key, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Undo(key, []byte("b"))
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("second undo expected 'a', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := m.Undo(key, []byte("a")); ok {
		t.Fatalf("history should be exhausted")
	}
	s, ok = m.Redo(key, []byte("a"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(key, []byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("second redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if m.CanRedo(key) || !m.CanUndo(key) {
		t.Fatalf("unexpected CanUndo/CanRedo after full redo")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	m.Push(Snapshot{Key: "md", Blob: []byte("a"), TS: time.Now()})
	m.Undo("md", []byte("b"))
	if !m.CanRedo("md") {
		t.Fatalf("redo expected after undo")
	}
	m.Push(Snapshot{Key: "md", Blob: []byte("a"), TS: time.Now()})
	if m.CanRedo("md") {
		t.Fatalf("new change must clear redo")
	}
}

func TestCoalesceKeepsEarliestState(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerKey: 10, MinInterval: 50 * time.Millisecond})
	key := "sm"
	t0 := time.Now()
	m.Push(Snapshot{Key: key, Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Key: key, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)}) // coalesce
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(key, []byte("3"))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected earliest snapshot '1', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerKey: 2})
	for i := 0; i < 10; i++ {
		m.Push(Snapshot{Key: "xs", Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	_, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerKey cap to limit to 2, got %d", total)
	}
}
