/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	applog "gridboard/internal/log"
	"gridboard/internal/storage"
)

// Visibility is the set of hidden card IDs. A card absent from the set is
// visible. Stored IDs that match no current card are kept on disk but never
// reported.
type Visibility struct {
	kv     storage.KV
	key    string
	known  map[string]struct{}
	hidden map[string]struct{}
	log    *slog.Logger
}

// OpenVisibility restores the hidden set. A malformed payload is discarded and
// the set starts empty.
func OpenVisibility(ctx context.Context, kv storage.KV, namespace string, cardIDs []string) (*Visibility, error) {
	if kv == nil {
		return nil, errors.New("layoutstore: nil storage")
	}
	v := &Visibility{
		kv:     kv,
		key:    storage.Key(namespace, HiddenKey),
		known:  make(map[string]struct{}, len(cardIDs)),
		hidden: map[string]struct{}{},
		log:    applog.WithComponent("visibility").With(slog.String("namespace", namespace)),
	}
	for _, id := range cardIDs {
		v.known[id] = struct{}{}
	}
	ids, err := v.load(ctx)
	if err != nil {
		v.log.Warn("discarding persisted hidden cards", slog.Any("err", err))
		return v, nil
	}
	stale := 0
	for _, id := range ids {
		v.hidden[id] = struct{}{}
		if _, ok := v.known[id]; !ok {
			stale++
		}
	}
	if stale > 0 {
		v.log.Info("ignoring hidden ids of unknown cards", slog.Int("count", stale))
	}
	return v, nil
}

func (v *Visibility) load(ctx context.Context) ([]string, error) {
	raw, ok, err := v.kv.Get(ctx, v.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", v.key, err)
	}
	if !ok {
		return nil, nil
	}
	if err := validate(hiddenSchema, raw); err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return ids, nil
}

// IsHidden reports whether a known card is hidden. Unknown IDs are never hidden.
func (v *Visibility) IsHidden(id string) bool {
	if _, ok := v.known[id]; !ok {
		return false
	}
	_, hidden := v.hidden[id]
	return hidden
}

// Toggle flips the card's membership, persists, and returns the new hidden state.
func (v *Visibility) Toggle(ctx context.Context, id string) (bool, error) {
	if _, ok := v.known[id]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	_, hidden := v.hidden[id]
	if hidden {
		delete(v.hidden, id)
	} else {
		v.hidden[id] = struct{}{}
	}
	v.persist(ctx)
	return !hidden, nil
}

// Clear unhides every card and persists.
func (v *Visibility) Clear(ctx context.Context) {
	v.hidden = map[string]struct{}{}
	v.persist(ctx)
}

// HiddenIDs lists hidden known cards in sorted order.
func (v *Visibility) HiddenIDs() []string {
	out := make([]string, 0, len(v.hidden))
	for id := range v.hidden {
		if _, ok := v.known[id]; ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (v *Visibility) persist(ctx context.Context) {
	ids := make([]string, 0, len(v.hidden))
	for id := range v.hidden {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	b, err := json.Marshal(ids)
	if err != nil {
		v.log.Error("marshal hidden cards failed", slog.Any("err", err))
		return
	}
	if err := v.kv.Set(ctx, v.key, string(b)); err != nil {
		v.log.Warn("persist hidden cards failed", slog.Any("err", err))
	}
}
