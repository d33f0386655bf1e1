/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", "20250101-000000", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Gridboard Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileInDataDir(t *testing.T) {
	root := t.TempDir()
	path, err := writeReport(root, "20250101-000000", "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, DirName) {
		t.Fatalf("expected crash report under %s, got %s", DirName, path)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "DataDir: "+root) {
		t.Fatalf("data dir line missing")
	}
}

func TestWriteStateSurvivesFailingDump(t *testing.T) {
	root := t.TempDir()
	if _, err := writeState(root, "x", func() ([]byte, error) { return nil, errors.New("nope") }); err == nil {
		t.Fatalf("expected error from failing dump")
	}
	if _, err := writeState(root, "x", func() ([]byte, error) { panic("again") }); err == nil {
		t.Fatalf("expected error from panicking dump")
	}
}

func TestRecoverWritesReportAndState(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	func() {
		defer Recover(root, func() ([]byte, error) { return []byte(`{"breakpoint":"lg"}`), nil })
		panic("boom")
	}()

	files, _ := os.ReadDir(filepath.Join(root, DirName))
	var report, state string
	for _, f := range files {
		switch {
		case strings.HasSuffix(f.Name(), "-state.json"):
			state = filepath.Join(root, DirName, f.Name())
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(root, DirName, f.Name())
		}
	}
	if report == "" || state == "" {
		t.Fatalf("expected report and state files, got %v", files)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(t.TempDir(), nil)
	}()
	if called {
		t.Fatalf("exit should not be called without a panic")
	}
}
