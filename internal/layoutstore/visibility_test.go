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
	"errors"
	"reflect"
	"testing"

	"gridboard/internal/storage"
)

func TestVisibilityToggleAndPersist(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	v, err := OpenVisibility(ctx, kv, "", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if v.IsHidden("a") {
		t.Fatalf("cards start visible")
	}
	if hidden, err := v.Toggle(ctx, "b"); err != nil || !hidden {
		t.Fatalf("Toggle(b) = %v, %v", hidden, err)
	}
	if hidden, _ := v.Toggle(ctx, "a"); !hidden {
		t.Fatalf("Toggle(a) should hide")
	}
	raw, _, _ := kv.Get(ctx, HiddenKey)
	if raw != `["a","b"]` {
		t.Fatalf("persisted hidden set = %s", raw)
	}
	v2, _ := OpenVisibility(ctx, kv, "", []string{"a", "b", "c"})
	if !reflect.DeepEqual(v2.HiddenIDs(), []string{"a", "b"}) {
		t.Fatalf("HiddenIDs after reopen = %v", v2.HiddenIDs())
	}
	if hidden, _ := v2.Toggle(ctx, "a"); hidden {
		t.Fatalf("second toggle should unhide")
	}
	v2.Clear(ctx)
	if len(v2.HiddenIDs()) != 0 {
		t.Fatalf("Clear left %v", v2.HiddenIDs())
	}
	if raw, _, _ := kv.Get(ctx, HiddenKey); raw != `[]` {
		t.Fatalf("Clear persisted %s", raw)
	}
}

func TestVisibilityIgnoresUnknownIDs(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	_ = kv.Set(ctx, HiddenKey, `["a","retired"]`)
	v, _ := OpenVisibility(ctx, kv, "", []string{"a", "b"})
	if v.IsHidden("retired") {
		t.Fatalf("unknown id reported hidden")
	}
	if !reflect.DeepEqual(v.HiddenIDs(), []string{"a"}) {
		t.Fatalf("HiddenIDs = %v", v.HiddenIDs())
	}
	if _, err := v.Toggle(ctx, "retired"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}

func TestVisibilityMalformedPayload(t *testing.T) {
	ctx := context.Background()
	for _, p := range []string{`{"a":true}`, `[1,2]`, `nope`} {
		kv := storage.NewMemory()
		_ = kv.Set(ctx, HiddenKey, p)
		v, err := OpenVisibility(ctx, kv, "", []string{"a"})
		if err != nil {
			t.Fatalf("malformed payload must not fail open: %v", err)
		}
		if v.IsHidden("a") || len(v.HiddenIDs()) != 0 {
			t.Fatalf("payload %q should be discarded", p)
		}
	}
}

// Hiding a card never moves any card, and unhiding puts it back where it was.
func TestHideShowIsolation(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	cards := testCards(6)
	s := openStore(t, kv, cards)
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	v, _ := OpenVisibility(ctx, kv, "", ids)
	before, _ := s.GetLayout(ctx, "lg")
	if e := entryOf(t, before, "c1"); e.X != 4 || e.Y != 0 {
		t.Fatalf("c1 expected at (4,0), got %+v", e)
	}
	if hidden, _ := v.Toggle(ctx, "c1"); !hidden {
		t.Fatalf("c1 should be hidden")
	}
	mid, _ := s.GetLayout(ctx, "lg")
	if !reflect.DeepEqual(before, mid) {
		t.Fatalf("hiding changed geometry: %v -> %v", before, mid)
	}
	_, _ = v.Toggle(ctx, "c1")
	after, _ := s.GetLayout(ctx, "lg")
	if e := entryOf(t, after, "c1"); e.X != 4 || e.Y != 0 {
		t.Fatalf("c1 did not return to (4,0): %+v", e)
	}
}
