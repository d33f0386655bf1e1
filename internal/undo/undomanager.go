/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob for one history key (a breakpoint).
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	Key  string
	Blob []byte
	TS   time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerKey limits number of snapshots per key kept in memory (0 means unlimited).
	MaxPerKey int
	// MinInterval coalesces snapshots pushed within the interval for the same key:
	// the earlier snapshot is kept so one undo reverts the whole burst.
	// Zero disables coalescing.
	MinInterval time.Duration
}

// Manager keeps undo and redo stacks per key. Push records the state before a
// change; Undo and Redo trade the caller's current state for the stored one.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting, undo and redo together
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024 // 4 MiB
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state preceding a change and clears the key's redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Key)
	stack := m.undo[s.Key]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		// Coalesce: keep the older state, refresh its timestamp.
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.Key] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Key)
}

// Undo returns the newest stored state for key and files current for Redo.
func (m *Manager) Undo(key string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.popLocked(m.undo, key)
	if !ok {
		return Snapshot{}, false
	}
	m.redo[key] = append(m.redo[key], Snapshot{Key: key, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	return s, true
}

// Redo reverses the last Undo for key and files current for Undo.
func (m *Manager) Redo(key string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.popLocked(m.redo, key)
	if !ok {
		return Snapshot{}, false
	}
	m.undo[key] = append(m.undo[key], Snapshot{Key: key, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	m.enforceCapsLocked(key)
	return s, true
}

// CanUndo and CanRedo report whether the key has history in that direction.
func (m *Manager) CanUndo(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[key]) > 0
}

func (m *Manager) CanRedo(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[key]) > 0
}

func (m *Manager) popLocked(stacks map[string][]Snapshot, key string) (Snapshot, bool) {
	stack := stacks[key]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(stacks, key)
	} else {
		stacks[key] = stack[:len(stack)-1]
	}
	m.totalBytes -= len(s.Blob)
	return s, true
}

func (m *Manager) dropRedoLocked(key string) {
	for _, s := range m.redo[key] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, key)
}

// Clear drops all history for every key, e.g. after a layout reset.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = make(map[string][]Snapshot)
	m.redo = make(map[string][]Snapshot)
	m.totalBytes = 0
}

// ClearKey drops the undo/redo stacks for one key.
func (m *Manager) ClearKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[key] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, key)
	m.dropRedoLocked(key)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics. keys and snapshots count undo history only.
func (m *Manager) Stats() (totalBytes int, keys int, snapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys = len(m.undo)
	for _, v := range m.undo {
		snapshots += len(v)
	}
	return m.totalBytes, keys, snapshots
}

func (m *Manager) enforceCapsLocked(key string) {
	// Per-key depth cap
	if m.cfg.MaxPerKey > 0 {
		stack := m.undo[key]
		if len(stack) > m.cfg.MaxPerKey {
			toDrop := len(stack) - m.cfg.MaxPerKey
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[key] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest undo entries across all keys
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestKey := ""
		found := false
		var oldestTS time.Time
		for k, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestKey = k
				oldestTS = stack[0].TS
				found = true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestKey]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestKey] = stack[1:]
		if len(m.undo[oldestKey]) == 0 {
			delete(m.undo, oldestKey)
		}
	}
}
