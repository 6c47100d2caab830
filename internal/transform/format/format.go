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

// Package format implements the reference format transformer:
// NEW_COLUMN:template mappings that add (or overwrite) a column by
// substituting {COL} / {COL:fmt} placeholders from other row values.
package format

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nicopon/dtpipe/internal/types"
)

// Mapping is one NEW_COLUMN:template rule.
type Mapping struct {
	Column   string
	Template string
}

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)(?::([^}]+))?\}`)

// Transformer renders templates into new or existing columns. It never
// drops rows.
type Transformer struct {
	Mappings []Mapping

	sourceCols []types.ColumnDescriptor
	targets    []target
}

type target struct {
	column int // position in the output row this mapping writes to
	new    bool
	spec   Mapping
}

// New builds a format Transformer over mappings.
func New(mappings []Mapping) *Transformer {
	return &Transformer{Mappings: mappings}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "format" }

// Kind reports KindMap: format only adds/overwrites columns, it never
// multiplies or drops rows.
func (t *Transformer) Kind() types.TransformerKind { return types.KindMap }

// Initialize appends one new column per mapping whose name is not
// already present, and resolves in-place targets for mappings that
// reuse an existing column name.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	cols := append([]types.ColumnDescriptor(nil), columnsIn...)
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[c.Name] = i
	}

	t.targets = t.targets[:0]
	for _, m := range t.Mappings {
		if idx, ok := byName[m.Column]; ok {
			t.targets = append(t.targets, target{column: idx, spec: m})
			continue
		}
		cols = append(cols, types.ColumnDescriptor{Name: m.Column, Type: types.TypeString, Nullable: true})
		idx := len(cols) - 1
		byName[m.Column] = idx
		t.targets = append(t.targets, target{column: idx, new: true, spec: m})
	}

	t.sourceCols = cols
	return cols, nil
}

// Transform renders every template against row's current values,
// growing row to accommodate brand-new columns.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	out := make(types.Row, len(t.sourceCols))
	copy(out, row)

	byName := make(map[string]types.Value, len(t.sourceCols))
	for i, c := range t.sourceCols {
		if i < len(row) {
			byName[c.Name] = row[i]
		}
	}

	for _, tg := range t.targets {
		rendered, err := render(tg.spec.Template, byName)
		if err != nil {
			return nil, err
		}
		out[tg.column] = rendered
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

// render substitutes every {COL} / {COL:fmt} placeholder in template.
func render(template string, values map[string]types.Value) (string, error) {
	var firstErr error
	result := placeholder.ReplaceAllStringFunc(template, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		col, spec := parts[1], parts[2]
		v, ok := values[col]
		if !ok {
			if firstErr == nil {
				firstErr = types.NewFailure(types.KindConfig,
					fmt.Sprintf("format transformer: unknown placeholder column %q", col), nil)
			}
			return ""
		}
		return renderValue(v, spec)
	})
	return result, firstErr
}

// renderValue applies an optional format spec to v: a time.Format
// layout when v is time-shaped, otherwise a fmt.Sprintf numeric verb.
func renderValue(v types.Value, spec string) string {
	if v == nil {
		return ""
	}
	if spec == "" {
		return fmt.Sprintf("%v", v)
	}
	switch tv := v.(type) {
	case types.Timestamp:
		return tv.Time.Format(spec)
	case time.Time:
		return tv.Format(spec)
	case types.Date:
		d := time.Date(tv.Year, time.Month(tv.Month), tv.Day, 0, 0, 0, 0, time.UTC)
		return d.Format(spec)
	}
	if strings.ContainsRune(spec, '%') {
		if f, err := toFloat(v); err == nil {
			return fmt.Sprintf(spec, f)
		}
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v types.Value) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}
