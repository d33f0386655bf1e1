/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestInstanceIDIsStable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	first, err := InstanceID(dir)
	if err != nil {
		t.Fatalf("InstanceID: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("not a uuid: %q", first)
	}
	second, err := InstanceID(dir)
	if err != nil {
		t.Fatalf("InstanceID again: %v", err)
	}
	if first != second {
		t.Fatalf("id changed: %s -> %s", first, second)
	}
}

func TestInstanceIDReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, InstanceFile), []byte("not-an-id"), 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := InstanceID(dir)
	if err != nil {
		t.Fatalf("InstanceID: %v", err)
	}
	if id == "not-an-id" {
		t.Fatal("corrupt id kept")
	}
	b, _ := os.ReadFile(filepath.Join(dir, InstanceFile))
	if string(b) != id+"\n" {
		t.Fatalf("file = %q, want %q", b, id)
	}
}
