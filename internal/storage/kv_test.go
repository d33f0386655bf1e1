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
	"errors"
	"testing"
)

// exerciseKV runs the shared contract against any backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()
	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "a", `{"lg":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "a", `{"lg":[{"id":"x"}]}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := kv.Get(ctx, "a")
	if err != nil || !ok || v != `{"lg":[{"id":"x"}]}` {
		t.Fatalf("Get(a) = %q ok=%v err=%v", v, ok, err)
	}
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "a"); ok {
		t.Fatalf("key survived Delete")
	}
	if err := kv.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Delete of missing key should be a no-op: %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	m := NewMemory()
	exerciseKV(t, m)
	_ = m.Set(context.Background(), "b", "1")
	_ = m.Set(context.Background(), "a", "2")
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "a" {
		t.Fatalf("Keys = %v", keys)
	}
	_ = m.Close()
	if err := m.Set(context.Background(), "c", "3"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestKeyNamespace(t *testing.T) {
	if got := Key("", "dashboard-layout"); got != "dashboard-layout" {
		t.Fatalf("Key without namespace = %q", got)
	}
	if got := Key(" ops ", "dashboard-layout"); got != "ops:dashboard-layout" {
		t.Fatalf("Key with namespace = %q", got)
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, drv := range []string{"memory", "file", "sqlite"} {
		kv, err := Open(ctx, Options{Driver: drv, DataDir: dir})
		if err != nil {
			t.Fatalf("Open(%s): %v", drv, err)
		}
		exerciseKV(t, kv)
		_ = kv.Close()
	}
	if _, err := Open(ctx, Options{Driver: "redis"}); err == nil {
		t.Fatalf("unknown driver should fail")
	}
	if _, err := Open(ctx, Options{Driver: "file"}); err == nil {
		t.Fatalf("file driver without a directory should fail")
	}
}
