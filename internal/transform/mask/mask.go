// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package mask implements the reference mask transformer: COLUMN:pattern
// mappings that replace a string value character-by-character.
package mask

import (
	"context"
	"fmt"

	"github.com/nicopon/dtpipe/internal/types"
)

// Mapping is one COLUMN:pattern rule.
type Mapping struct {
	Column  string
	Pattern string
}

// Transformer masks the configured columns in place. It never adds,
// drops or renames columns, so Initialize is a passthrough.
type Transformer struct {
	Mappings []Mapping
	SkipNull bool

	indexes map[int]string // column position -> pattern
}

// New builds a mask Transformer over mappings.
func New(mappings []Mapping, skipNull bool) *Transformer {
	return &Transformer{Mappings: mappings, SkipNull: skipNull}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "mask" }

// Kind reports KindMap: mask never drops or multiplies rows.
func (t *Transformer) Kind() types.TransformerKind { return types.KindMap }

// Initialize resolves each configured column name to its positional
// index in columnsIn. The column list is unchanged.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	byName := make(map[string]int, len(columnsIn))
	for i, c := range columnsIn {
		byName[c.Name] = i
	}
	t.indexes = make(map[int]string, len(t.Mappings))
	for _, m := range t.Mappings {
		idx, ok := byName[m.Column]
		if !ok {
			return nil, types.NewFailure(types.KindConfig,
				fmt.Sprintf("mask transformer: column %q not found", m.Column), nil)
		}
		t.indexes[idx] = m.Pattern
	}
	return columnsIn, nil
}

// Transform applies every configured mask to row, never dropping it.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	out := row.Clone()
	for idx, pattern := range t.indexes {
		if idx >= len(out) {
			continue
		}
		if out[idx] == nil && t.SkipNull {
			continue
		}
		out[idx] = applyPattern(stringOf(out[idx]), pattern)
	}
	return out, nil
}

// TransformMany is unused: Kind() == KindMap.
func (t *Transformer) TransformMany(ctx context.Context, row types.Row) ([]types.Row, error) {
	r, err := t.Transform(ctx, row)
	if err != nil || r == nil {
		return nil, err
	}
	return []types.Row{r}, nil
}

// Close releases no resources.
func (t *Transformer) Close() error { return nil }

func stringOf(v types.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// applyPattern implements the §4.5 mask rule: '#' at position i keeps
// source[i]; any other character replaces it verbatim. A pattern shorter
// than source keeps the tail; a pattern longer than source ignores the
// excess.
func applyPattern(source, pattern string) string {
	sr := []rune(source)
	pr := []rune(pattern)
	out := make([]rune, len(sr))
	for i, c := range sr {
		if i < len(pr) {
			if pr[i] == '#' {
				out[i] = c
			} else {
				out[i] = pr[i]
			}
		} else {
			out[i] = c
		}
	}
	return string(out)
}
