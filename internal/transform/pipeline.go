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

// Package transform composes user-declared Transformer stages into a
// single effective transformer and hosts the reference transformers
// (mask, overwrite, format, fake, filter, expand) in subpackages.
package transform

import (
	"context"

	"github.com/nicopon/dtpipe/internal/types"
)

// Pipeline composes N stages into one effective types.Transformer. It is
// itself a KindExpand transformer so the orchestrator can treat a
// zero-stage, single-stage or N-stage pipeline uniformly.
type Pipeline struct {
	stages []types.Transformer

	// columnsOut is the schema produced by the last stage, or the input
	// schema when there are no stages.
	columnsOut []types.ColumnDescriptor

	// stats counts rows seen by each named stage, exported verbatim into
	// ExportMetrics.TransformerStats.
	stats map[string]int64
}

// New builds a Pipeline over stages, preserving user-declared order.
// There is no implicit reordering or priority.
func New(stages []types.Transformer) *Pipeline {
	return &Pipeline{stages: stages, stats: make(map[string]int64, len(stages))}
}

// Name identifies the pipeline in logs; it is not one of the per-stage
// names recorded in TransformerStats.
func (p *Pipeline) Name() string { return "pipeline" }

// Kind reports KindExpand: even a pipeline made entirely of map stages
// may still drop rows, and TransformMany models that uniformly.
func (p *Pipeline) Kind() types.TransformerKind { return types.KindExpand }

// Initialize runs each stage's Initialize in turn, threading the
// evolving column list. It is called exactly once.
func (p *Pipeline) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	cols := columnsIn
	for _, s := range p.stages {
		out, err := s.Initialize(ctx, cols)
		if err != nil {
			return nil, err
		}
		cols = out
	}
	p.columnsOut = cols
	return cols, nil
}

// Columns returns the schema produced by the last stage, valid after
// Initialize has returned.
func (p *Pipeline) Columns() []types.ColumnDescriptor { return p.columnsOut }

// Transform is never called directly on a Pipeline; TransformMany is the
// only entry point since Kind() == KindExpand.
func (p *Pipeline) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	rows, err := p.TransformMany(ctx, row)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// TransformMany runs row through every stage in sequence, short-circuiting
// on a map stage's drop (nil row) and flat-mapping on an expand stage.
func (p *Pipeline) TransformMany(ctx context.Context, row types.Row) ([]types.Row, error) {
	current := []types.Row{row}
	for _, stage := range p.stages {
		var next []types.Row
		for _, r := range current {
			p.stats[stage.Name()]++
			switch stage.Kind() {
			case types.KindExpand:
				out, err := stage.TransformMany(ctx, r)
				if err != nil {
					return nil, err
				}
				next = append(next, out...)
			default:
				out, err := stage.Transform(ctx, r)
				if err != nil {
					return nil, err
				}
				if out == nil {
					continue
				}
				next = append(next, out)
			}
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current, nil
}

// Stats returns a snapshot of per-stage row counts seen so far.
func (p *Pipeline) Stats() map[string]int64 {
	out := make(map[string]int64, len(p.stats))
	for k, v := range p.stats {
		out[k] = v
	}
	return out
}

// Close tears the stages down in reverse initialization order, as the
// teacher's resolver-chain teardown does, collecting the first error but
// still closing every stage.
func (p *Pipeline) Close() error {
	var first error
	for i := len(p.stages) - 1; i >= 0; i-- {
		if err := p.stages[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
