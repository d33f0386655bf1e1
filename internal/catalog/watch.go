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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gridboard/internal/domain"
	applog "gridboard/internal/log"
)

// DefaultDebounce coalesces bursts of editor writes into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads the catalog at path whenever it changes on disk and hands the
// new card set to onChange. Parse failures go to onError and the previous
// set stays in effect. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors which
// save via rename are picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func([]domain.Card), onError func(error)) error {
	if path == "" {
		return errors.New("catalog path is required")
	}
	if onChange == nil {
		return errors.New("onChange is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	l := applog.WithOperation(applog.WithComponent("catalog"), "watch").With(slog.String("path", abs))
	l.Info("watching catalog")

	reload := func() {
		cards, err := Load(abs)
		if err != nil {
			l.Warn("reload failed", slog.Any("err", err))
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cards)
	}

	// Reloads run on this goroutine, one at a time.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", slog.Any("err", err))
			if onError != nil {
				onError(err)
			}
		}
	}
}
