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
	"fmt"
	"path/filepath"
	"strings"
)

// Options selects and configures a backend.
type Options struct {
	Driver   string // file | sqlite | postgres | memory
	Path     string // file: directory; sqlite: database file (defaults under DataDir)
	DataDir  string
	DSN      string
	Password string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file":
		dir := opts.Path
		if dir == "" {
			dir = opts.DataDir
		}
		return OpenFile(dir)
	case "sqlite":
		p := opts.Path
		if p == "" {
			p = filepath.Join(opts.DataDir, SQLiteFileName)
		}
		return OpenSQLite(p)
	case "postgres":
		return OpenPostgres(ctx, opts.DSN, opts.Password)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
