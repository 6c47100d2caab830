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

// Package testutil provides an in-memory Reader and Writer fixture so
// orchestrator and pipeline tests can exercise a full run without a
// real database or file, mirroring the role the teacher's sinktest
// fixtures play for its own integration tests.
package testutil

import (
	"context"
	"sync"

	"github.com/nicopon/dtpipe/internal/types"
)

// MemoryReader replays a fixed set of rows against a fixed column list.
type MemoryReader struct {
	Cols []types.ColumnDescriptor
	Rows []types.Row

	closed bool
}

// NewMemoryReader builds a reader over a fixed in-memory row set.
func NewMemoryReader(cols []types.ColumnDescriptor, rows []types.Row) *MemoryReader {
	return &MemoryReader{Cols: cols, Rows: rows}
}

// Open is a no-op; the row set is fixed at construction.
func (r *MemoryReader) Open(ctx context.Context) error { return nil }

// Columns returns the fixed column list.
func (r *MemoryReader) Columns() []types.ColumnDescriptor { return r.Cols }

// ReadBatches streams Rows in batches of at most batchSize, observing
// ctx cancellation between rows exactly like a real I/O-bound reader.
func (r *MemoryReader) ReadBatches(ctx context.Context, batchSize int) (<-chan types.Batch, <-chan error) {
	out := make(chan types.Batch, 2)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		batch := make(types.Batch, 0, batchSize)
		for _, row := range r.Rows {
			select {
			case <-ctx.Done():
				errc <- types.NewFailure(types.KindCancelled, "read cancelled", ctx.Err())
				return
			default:
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				out <- batch
				batch = make(types.Batch, 0, batchSize)
			}
		}
		if len(batch) > 0 {
			out <- batch
		}
	}()

	return out, errc
}

// Close marks the reader closed. Idempotent.
func (r *MemoryReader) Close() error {
	r.closed = true
	return nil
}

// MemoryWriter accumulates every row it is handed, safe for the
// orchestrator's single-writer-goroutine usage and for direct
// inspection from a test after the run completes.
type MemoryWriter struct {
	mu sync.Mutex

	Columns   []types.TargetColumnDescriptor
	Rows      []types.Row
	Completed int
	Strategy  types.WriteStrategy
}

// NewMemoryWriter builds an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter { return &MemoryWriter{} }

// Initialize records the final column list. When Strategy is
// StrategyTruncate or StrategyRecreate, any previously accumulated rows
// are discarded, mirroring a real sink's reset-before-write semantics.
func (w *MemoryWriter) Initialize(ctx context.Context, columns []types.TargetColumnDescriptor) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Columns = columns
	if w.Strategy == types.StrategyTruncate || w.Strategy == types.StrategyRecreate {
		w.Rows = nil
	}
	return nil
}

// WriteBatch appends rows to the in-memory store.
func (w *MemoryWriter) WriteBatch(ctx context.Context, rows types.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Rows = append(w.Rows, rows...)
	return nil
}

// Complete increments the completion counter. Idempotent in the sense
// that calling it any number of times is safe, as the contract requires.
func (w *MemoryWriter) Complete(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Completed++
	return nil
}

// Snapshot returns a copy of the rows written so far, safe to inspect
// concurrently with a still-running writer.
func (w *MemoryWriter) Snapshot() []types.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]types.Row, len(w.Rows))
	copy(out, w.Rows)
	return out
}
