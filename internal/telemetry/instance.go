/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// InstanceFile holds the anonymous instance id inside the data dir.
const InstanceFile = "telemetry-id"

// InstanceID returns the anonymous id of this installation, creating it on
// first use. A missing or corrupt file is replaced with a fresh random UUID.
func InstanceID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, InstanceFile)
	if b, err := os.ReadFile(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(b))); err == nil {
			return id.String(), nil
		}
	}
	id := uuid.NewString()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return id, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return id, fmt.Errorf("write instance id: %w", err)
	}
	return id, nil
}
