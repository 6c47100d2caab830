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

// Package types contains the data model and the core interfaces shared
// across the pipeline engine. Placing them in one leaf package keeps
// every other package free of import cycles while it composes readers,
// writers and transformers together.
package types

import (
	"context"
	"time"
)

// LogicalType is the closed set of column types the pipeline understands.
// Every adapter maps its native types onto this set.
type LogicalType int

// The supported logical types.
const (
	TypeUnknown LogicalType = iota
	TypeInt64
	TypeFloat64
	TypeDecimal
	TypeBool
	TypeString
	TypeBytes
	TypeDate
	TypeTimestamp
)

// String renders the logical type for logging and error messages.
func (t LogicalType) String() string {
	switch t {
	case TypeInt64:
		return "INT64"
	case TypeFloat64:
		return "FLOAT64"
	case TypeDecimal:
		return "DECIMAL"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	case TypeBytes:
		return "BYTES"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// ColumnDescriptor describes one source-side column. Name is already
// dialect-normalized; OriginalName, if non-empty, holds the un-normalized
// spelling that produced it.
type ColumnDescriptor struct {
	Name          string
	OriginalName  string
	Type          LogicalType
	Nullable      bool
	CaseSensitive bool

	// Precision and Scale are only meaningful when Type == TypeDecimal.
	Precision int
	Scale     int
}

// TargetColumnDescriptor describes one sink-side column.
type TargetColumnDescriptor struct {
	ColumnDescriptor

	NativeType string
	PrimaryKey bool
	Unique     bool
	MaxLength  int
}

// TargetSchema describes the sink's existing (or to-be-created) shape.
type TargetSchema struct {
	Columns    []TargetColumnDescriptor
	Exists     bool
	RowCount   int64 // -1 when unknown
	ByteSize   int64 // -1 when unknown
	PrimaryKey []string
}

// ColumnByName returns the target column with the given name, if any.
func (s *TargetSchema) ColumnByName(name string) (TargetColumnDescriptor, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return TargetColumnDescriptor{}, false
}

// Value is the union of value kinds a Row may carry at a given position.
// A nil Value represents SQL NULL / "absent".
type Value any

// Row is a fixed-width, ordered tuple of values. Positional order must
// match the column list in force at the pipeline stage that produced it.
type Row []Value

// Clone returns a shallow copy of the row, safe to mutate independently
// of the original (transformers must not mutate a Row they did not
// produce themselves).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Batch is an ordered, finite sequence of rows delivered together.
// Batches preserve source order; a Batch must never be reordered once
// constructed.
type Batch []Row

// Date is a naive calendar date with no time-of-day component.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Timestamp is a date/time value, optionally UTC per the source.
type Timestamp struct {
	time.Time
	UTC bool
}

// Reader is the batch-oriented source contract. Implementations are
// I/O-bound and may suspend during Open, during each batch pull, and
// during Close.
type Reader interface {
	// Open establishes the connection, issues the query (if any), and
	// populates Columns. It must be called exactly once before
	// ReadBatches or Columns.
	Open(ctx context.Context) error

	// Columns returns the column list discovered by Open. It is
	// immutable once Open has returned.
	Columns() []ColumnDescriptor

	// ReadBatches returns a channel of batches of at most batchSize rows
	// each, closed when the source is exhausted, when ctx is cancelled,
	// or when an error occurs. Errs receives at most one error.
	ReadBatches(ctx context.Context, batchSize int) (<-chan Batch, <-chan error)

	// Close releases the connection. It is idempotent.
	Close() error
}

// Writer is the batch-oriented sink contract.
type Writer interface {
	// Initialize prepares the sink for the given (final) column list. It
	// is called exactly once, before any WriteBatch call.
	Initialize(ctx context.Context, columns []TargetColumnDescriptor) error

	// WriteBatch appends a batch. It may be called zero or more times.
	WriteBatch(ctx context.Context, rows Batch) error

	// Complete flushes buffers, commits any trailing transaction, and
	// releases the connection. It must be idempotent.
	Complete(ctx context.Context) error
}

// WriteStrategy selects how a Writer reconciles incoming rows with
// existing sink contents.
type WriteStrategy int

// The supported write strategies.
const (
	StrategyAppend WriteStrategy = iota
	StrategyTruncate
	StrategyRecreate
	StrategyUpsert
)

// String renders the strategy for flags and logs.
func (s WriteStrategy) String() string {
	switch s {
	case StrategyTruncate:
		return "truncate"
	case StrategyRecreate:
		return "recreate"
	case StrategyUpsert:
		return "upsert"
	default:
		return "append"
	}
}

// ParseWriteStrategy parses the four recognized strategy names.
func ParseWriteStrategy(s string) (WriteStrategy, bool) {
	switch s {
	case "", "append":
		return StrategyAppend, true
	case "truncate":
		return StrategyTruncate, true
	case "recreate":
		return StrategyRecreate, true
	case "upsert":
		return StrategyUpsert, true
	default:
		return StrategyAppend, false
	}
}

// Transformer is a single stage of the pipeline. A transformer
// implements exactly one of the Map or Expand row contracts; Kind
// reports which.
type Transformer interface {
	// Name identifies the transformer in ExportMetrics.
	Name() string

	// Initialize is called exactly once, threading the evolving column
	// list from the previous stage. It returns the column list this
	// transformer produces.
	Initialize(ctx context.Context, columnsIn []ColumnDescriptor) (columnsOut []ColumnDescriptor, err error)

	// Kind reports whether this transformer maps one row to zero-or-one
	// rows, or expands one row into zero-or-more rows.
	Kind() TransformerKind

	// Transform implements the "map" contract. A nil Row (with nil
	// error) means "drop this row". Only called when Kind() == KindMap.
	Transform(ctx context.Context, row Row) (Row, error)

	// TransformMany implements the "expand" contract. Only called when
	// Kind() == KindExpand.
	TransformMany(ctx context.Context, row Row) ([]Row, error)

	// Close tears the transformer down. Transformers are torn down in
	// reverse initialization order.
	Close() error
}

// TransformerKind distinguishes the two mutually exclusive row
// contracts a Transformer may implement.
type TransformerKind int

// The two transformer row contracts.
const (
	KindMap TransformerKind = iota
	KindExpand
)

// ExportMetrics summarizes one completed (or aborted) run.
type ExportMetrics struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	ReadCount  int64 `json:"read_count"`
	WriteCount int64 `json:"write_count"`

	PeakMemoryWorkingSetMB float64 `json:"peak_memory_working_set_mb"`
	OverallThroughput      float64 `json:"overall_throughput_rows_per_sec"`

	TransformerStats map[string]int64 `json:"transformer_stats"`
}
