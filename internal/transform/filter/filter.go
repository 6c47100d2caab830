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

// Package filter implements the reference filter transformer: one or
// more user scripts evaluated over the row, kept only when every script
// returns truthy.
package filter

import (
	"context"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/nicopon/dtpipe/internal/types"
)

// Transformer drops rows that any compiled script rejects.
type Transformer struct {
	Provider script.Provider
	Scripts  []string

	handles []script.Handle
	columns []types.ColumnDescriptor
}

// New builds a filter Transformer backed by provider, compiling
// scripts lazily during Initialize.
func New(provider script.Provider, scripts []string) *Transformer {
	return &Transformer{Provider: provider, Scripts: scripts}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "filter" }

// Kind reports KindMap: filter drops rows but never multiplies them.
func (t *Transformer) Kind() types.TransformerKind { return types.KindMap }

// Initialize compiles every script once. The column list is unchanged.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	t.columns = columnsIn
	t.handles = make([]script.Handle, len(t.Scripts))
	for i, src := range t.Scripts {
		h, err := t.Provider.Compile(src)
		if err != nil {
			return nil, err
		}
		t.handles[i] = h
	}
	return columnsIn, nil
}

// Transform evaluates every script against row; the row survives only
// if all scripts return a truthy value.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	m := script.RowToMap(t.columns, row)
	for _, h := range t.handles {
		result, err := t.Provider.Eval(h, m)
		if err != nil {
			return nil, err
		}
		if !truthy(result) {
			return nil, nil
		}
	}
	return row, nil
}

// TransformMany is unused: Kind() == KindMap.
func (t *Transformer) TransformMany(ctx context.Context, row types.Row) ([]types.Row, error) {
	r, err := t.Transform(ctx, row)
	if err != nil || r == nil {
		return nil, err
	}
	return []types.Row{r}, nil
}

// Close releases no resources; script handles live for the process
// lifetime of the Provider.
func (t *Transformer) Close() error { return nil }

func truthy(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}
