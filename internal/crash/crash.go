/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report on disk.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gridboard/internal/log"
	"gridboard/internal/telemetry"
	"gridboard/internal/version"
)

// DirName is the report folder under the data directory.
const DirName = "crash"

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// StateFunc dumps the dashboard state at the time of the crash.
type StateFunc func() ([]byte, error)

// Recover captures a panic, logs it with its stack, writes a report under
// dataDir/crash (or the temp dir when dataDir is empty), saves a state dump
// next to it when state is non-nil, and exits with code 2.
//
// Usage: defer crash.Recover(dataDir, state)
func Recover(dataDir string, state StateFunc) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	reportPath, err := writeReport(dataDir, stamp, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if state != nil {
		if path, err := writeState(dataDir, stamp, state); err != nil {
			l.Error("crash state dump failed", slog.Any("err", err))
		} else {
			l.Info("crash state dump written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func reportDir(dataDir string) string {
	if dataDir == "" {
		return os.TempDir()
	}
	dir := filepath.Join(dataDir, DirName)
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func writeReport(dataDir, stamp string, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(dataDir), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Gridboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if dataDir != "" {
		_, _ = fmt.Fprintf(&buf, "DataDir: %s\n", dataDir)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// Opt-in upload; the report carries no layout data.
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

func writeState(dataDir, stamp string, state StateFunc) (path string, err error) {
	// A state func that panics itself must not hide the original report.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("state dump panicked: %v", r)
		}
	}()
	b, err := state()
	if err != nil {
		return "", err
	}
	path = filepath.Join(reportDir(dataDir), fmt.Sprintf("crash-%s-state.json", stamp))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
