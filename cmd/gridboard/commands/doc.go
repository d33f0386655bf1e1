/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package commands defines the gridboard CLI.
//
// Commands
//
//   - show           Print the dashboard at the current viewport width
//   - cards          List catalog cards and their visibility
//   - edit           Interactive editing session on stdin
//   - move, resize   One-shot geometry edits, saved immediately
//   - toggle         Hide or show a card
//   - reset          Restore default layouts and show every card
//   - dismiss-intro  Leave the introductory view
//   - export         Write a wireframe as PNG, PDF or SVG
//   - pack           Export or install layout packs
//   - serve          Serve the dashboard API over HTTP
//   - ui             Launch the desktop board
//   - config         Print the effective configuration
//   - version        Print the version
//
// The root command loads configuration and logging before any subcommand
// runs. Storage, the card catalog and the dashboard manager are opened on
// demand by the commands that need them and closed afterwards.
package commands
