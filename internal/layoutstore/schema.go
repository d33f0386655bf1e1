/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutstore

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrMalformedState marks a persisted payload that failed to parse or validate.
var ErrMalformedState = errors.New("malformed persisted state")

var (
	layoutSchema = mustSchema("schemas/layout.schema.json")
	hiddenSchema = mustSchema("schemas/hidden.schema.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("layoutstore: read %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("layoutstore: compile %s: %v", name, err))
	}
	return s
}

// validate checks payload against s and wraps every failure in ErrMalformedState.
func validate(s *gojsonschema.Schema, payload string) error {
	res, err := s.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformedState, strings.Join(msgs, "; "))
}

// ValidateLayout checks a persisted layout payload.
func ValidateLayout(payload string) error { return validate(layoutSchema, payload) }

// ValidateHidden checks a persisted hidden-card payload.
func ValidateHidden(payload string) error { return validate(hiddenSchema, payload) }
