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

// Package overwrite implements the reference static transformer:
// COLUMN:value mappings that replace a column's value with a literal.
package overwrite

import (
	"context"
	"fmt"

	"github.com/nicopon/dtpipe/internal/types"
)

// Mapping is one COLUMN:value rule. Value is always the untyped string
// the user wrote; adapters downstream coerce it per the target column.
type Mapping struct {
	Column string
	Value  string
}

// Transformer replaces configured columns with literal values.
type Transformer struct {
	Mappings []Mapping
	SkipNull bool

	values map[int]string
}

// New builds a static Transformer over mappings.
func New(mappings []Mapping, skipNull bool) *Transformer {
	return &Transformer{Mappings: mappings, SkipNull: skipNull}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "overwrite" }

// Kind reports KindMap.
func (t *Transformer) Kind() types.TransformerKind { return types.KindMap }

// Initialize resolves each column name to its position. The column list
// is unchanged.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	byName := make(map[string]int, len(columnsIn))
	for i, c := range columnsIn {
		byName[c.Name] = i
	}
	t.values = make(map[int]string, len(t.Mappings))
	for _, m := range t.Mappings {
		idx, ok := byName[m.Column]
		if !ok {
			return nil, types.NewFailure(types.KindConfig,
				fmt.Sprintf("overwrite transformer: column %q not found", m.Column), nil)
		}
		t.values[idx] = m.Value
	}
	return columnsIn, nil
}

// Transform overwrites each configured position, skipping positions
// that are currently null when SkipNull is set.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	out := row.Clone()
	for idx, value := range t.values {
		if idx >= len(out) {
			continue
		}
		if out[idx] == nil && t.SkipNull {
			continue
		}
		out[idx] = value
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
