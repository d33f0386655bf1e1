/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements the key/value persistence behind dashboard layouts.
// Values are opaque strings (the layout store writes JSON). Backends:
//   - MemoryKV: process-local, used for tests and the memory driver.
//   - FileKV: one JSON document with transactional writes and timestamped backups.
//   - SQLiteKV: embedded database under the data dir (WAL, versioned schema).
//   - PostgresKV: shared database for multi-host deployments, with embedded SQL migrations.
package storage
