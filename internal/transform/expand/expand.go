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

// Package expand implements the reference expand transformer: a user
// script returns an array of row-shaped objects, and the input row is
// replaced by those rows in order.
package expand

import (
	"context"
	"fmt"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/nicopon/dtpipe/internal/types"
)

// Transformer replaces each input row with the script's output rows.
type Transformer struct {
	Provider script.Provider
	Script   string

	// OutputColumns declares the schema produced by Script, since a
	// script result cannot be introspected ahead of running it. When
	// nil, the input column list is assumed unchanged.
	OutputColumns []types.ColumnDescriptor

	handle     script.Handle
	inColumns  []types.ColumnDescriptor
	outColumns []types.ColumnDescriptor
}

// New builds an expand Transformer backed by provider. outputColumns
// may be nil when the script only rearranges the input columns.
func New(provider script.Provider, src string, outputColumns []types.ColumnDescriptor) *Transformer {
	return &Transformer{Provider: provider, Script: src, OutputColumns: outputColumns}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "expand" }

// Kind reports KindExpand.
func (t *Transformer) Kind() types.TransformerKind { return types.KindExpand }

// Initialize compiles the script once and adopts OutputColumns (or
// columnsIn, if the user declared none) as the schema handed downstream.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	h, err := t.Provider.Compile(t.Script)
	if err != nil {
		return nil, err
	}
	t.handle = h
	t.inColumns = columnsIn
	out := t.OutputColumns
	if out == nil {
		out = columnsIn
	}
	t.outColumns = out
	return out, nil
}

// Transform is unused: Kind() == KindExpand.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	rows, err := t.TransformMany(ctx, row)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// TransformMany evaluates the script against row and converts its
// array-of-maps result into output rows, preserving script order.
func (t *Transformer) TransformMany(ctx context.Context, row types.Row) ([]types.Row, error) {
	m := script.RowToMap(t.inColumns, row)
	result, err := t.Provider.Eval(t.handle, m)
	if err != nil {
		return nil, err
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil, types.NewFailure(types.KindScript, "expand script must return an array of rows", nil)
	}

	out := make([]types.Row, 0, len(items))
	for i, item := range items {
		rowMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, types.NewFailure(types.KindScript,
				fmt.Sprintf("expand script element %d is not a row-shaped object", i), nil)
		}
		out = append(out, script.MapToRow(t.outColumns, rowMap))
	}
	return out, nil
}

// Close releases no resources.
func (t *Transformer) Close() error { return nil }
