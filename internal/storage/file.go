/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "gridboard/internal/log"
)

const (
	StateFileName  = "gridboard.json"
	BackupsDirName = "backups"
	// maxBackups bounds the number of timestamped copies kept next to the state file.
	maxBackups = 10
)

// fileState is the on-disk document.
type fileState struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileKV stores all keys in one JSON document under Dir.
// Every Set/Delete rewrites the document: temp file, fsync, rename.
// The previous document is copied to backups/ first.
type FileKV struct {
	Dir  string
	Path string

	mu     sync.Mutex
	values map[string]string
	closed bool
}

// OpenFile opens (or creates) the state document in dir.
// If the current document cannot be read or parsed, the latest backup is used.
func OpenFile(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	f := &FileKV{Dir: dir, Path: filepath.Join(dir, StateFileName), values: map[string]string{}}
	b, err := os.ReadFile(f.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read state: %w", err)
	}
	st, perr := decodeState(b)
	if perr != nil {
		l := applog.WithOperation(applog.WithComponent("storage"), "file_open")
		l.Warn("state unreadable; trying latest backup", slog.String("path", f.Path), slog.Any("err", perr))
		bst, berr := f.latestBackup()
		if berr != nil {
			return nil, fmt.Errorf("parse state: %w; backup attempt: %v", perr, berr)
		}
		st = bst
	}
	if st.Values != nil {
		f.values = st.Values
	}
	return f, nil
}

func decodeState(b []byte) (fileState, error) {
	var st fileState
	if err := json.Unmarshal(b, &st); err != nil {
		return st, err
	}
	return st, nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	next := cloneValues(f.values)
	next[key] = value
	if err := f.save(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if _, ok := f.values[key]; !ok {
		return nil
	}
	next := cloneValues(f.values)
	delete(next, key)
	if err := f.save(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileKV) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func cloneValues(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// save writes values with transactional semantics and a timestamped backup of the previous document.
func (f *FileKV) save(values map[string]string) error {
	data, err := json.MarshalIndent(fileState{Version: 1, Values: values}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(f.Dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(f.Path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", StateFileName, stamp))
		if cerr := copyFile(f.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current state: %w", cerr)
		}
		f.pruneBackups()
	}

	temp := filepath.Join(f.Dir, fmt.Sprintf(".%s.tmp-%d-%d", StateFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp state: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(f.Path); err == nil {
		_ = os.Remove(f.Path)
	}
	if rerr := os.Rename(temp, f.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace state: %w", rerr)
	}
	return nil
}

func (f *FileKV) backups() []string {
	bdir := filepath.Join(f.Dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, StateFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (f *FileKV) pruneBackups() {
	all := f.backups()
	for len(all) > maxBackups {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

// latestBackup returns the newest backup that still parses.
func (f *FileKV) latestBackup() (fileState, error) {
	all := f.backups()
	if len(all) == 0 {
		return fileState{}, errors.New("no backups found")
	}
	var lastErr error
	for i := len(all) - 1; i >= 0; i-- {
		b, err := os.ReadFile(all[i])
		if err != nil {
			lastErr = err
			continue
		}
		st, err := decodeState(b)
		if err != nil {
			lastErr = err
			continue
		}
		return st, nil
	}
	return fileState{}, fmt.Errorf("no readable backup: %w", lastErr)
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
