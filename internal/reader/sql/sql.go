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

// Package sql implements the generic, database/sql-backed StreamReader
// used for any relational source the registry resolves onto a Postgres
// or MySQL DSN without needing the native pgx fast path.
package sql

import (
	"context"
	"database/sql"

	"github.com/nicopon/dtpipe/internal/dialect"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/nicopon/dtpipe/internal/util/dbpool"
	"github.com/pkg/errors"
)

// Reader issues a single query and streams its result set as batches.
type Reader struct {
	Product dbpool.Product
	Dialect dialect.Dialect
	DSN     string
	Query   string

	db      *sql.DB
	rows    *sql.Rows
	columns []types.ColumnDescriptor
}

// New builds a Reader. query must be non-empty: relational readers
// always require a query (unlike file adapters).
func New(product dbpool.Product, d dialect.Dialect, dsn, query string) *Reader {
	return &Reader{Product: product, Dialect: d, DSN: dsn, Query: query}
}

// Open connects, issues Query, and populates Columns from the driver's
// reported column types, mapping unknown native types to STRING.
func (r *Reader) Open(ctx context.Context) error {
	db, err := dbpool.Open(ctx, r.Product, r.DSN, dbpool.Options{})
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not open source connection", err)
	}
	r.db = db

	rows, err := db.QueryContext(ctx, r.Query)
	if err != nil {
		_ = db.Close()
		return types.NewFailure(types.KindPermanentIO, "could not issue source query", err)
	}
	r.rows = rows

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not inspect result columns", err)
	}
	r.columns = make([]types.ColumnDescriptor, len(colTypes))
	for i, ct := range colTypes {
		nullable, _ := ct.Nullable()
		name := ct.Name()
		normalized := r.Dialect.Normalize(name)
		r.columns[i] = types.ColumnDescriptor{
			Name:          normalized,
			OriginalName:  name,
			Type:          mapNativeType(ct.DatabaseTypeName()),
			Nullable:      nullable,
			CaseSensitive: name != normalized,
		}
	}
	return nil
}

// Columns returns the schema discovered by Open.
func (r *Reader) Columns() []types.ColumnDescriptor { return r.columns }

// ReadBatches streams the open result set in batches of at most
// batchSize rows, discarding any partial batch on cancellation.
func (r *Reader) ReadBatches(ctx context.Context, batchSize int) (<-chan types.Batch, <-chan error) {
	out := make(chan types.Batch, 2)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		batch := make(types.Batch, 0, batchSize)
		values := make([]interface{}, len(r.columns))
		scanPtrs := make([]interface{}, len(r.columns))
		for i := range values {
			scanPtrs[i] = &values[i]
		}

		for r.rows.Next() {
			select {
			case <-ctx.Done():
				errc <- types.NewFailure(types.KindCancelled, "read cancelled", ctx.Err())
				return
			default:
			}

			if err := r.rows.Scan(scanPtrs...); err != nil {
				errc <- types.NewFailure(types.KindPermanentIO, "could not scan source row", err)
				return
			}
			row := make(types.Row, len(values))
			copy(row, values)
			batch = append(batch, row)

			if len(batch) >= batchSize {
				out <- batch
				batch = make(types.Batch, 0, batchSize)
			}
		}
		if err := r.rows.Err(); err != nil {
			errc <- types.NewFailure(types.KindPermanentIO, "error iterating source rows", err)
			return
		}
		if len(batch) > 0 {
			out <- batch
		}
	}()

	return out, errc
}

// Close releases the result set and the connection. It is idempotent.
func (r *Reader) Close() error {
	var first error
	if r.rows != nil {
		if err := r.rows.Close(); err != nil {
			first = err
		}
		r.rows = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil && first == nil {
			first = err
		}
		r.db = nil
	}
	if first != nil {
		return errors.WithStack(first)
	}
	return nil
}

// mapNativeType maps a driver-reported DatabaseTypeName to the closed
// logical type set, defaulting unknown names to STRING.
func mapNativeType(native string) types.LogicalType {
	switch native {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "SERIAL", "BIGSERIAL":
		return types.TypeInt64
	case "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "DOUBLE PRECISION":
		return types.TypeFloat64
	case "DECIMAL", "NUMERIC":
		return types.TypeDecimal
	case "BOOL", "BOOLEAN":
		return types.TypeBool
	case "BYTEA", "BLOB", "VARBINARY", "BINARY":
		return types.TypeBytes
	case "DATE":
		return types.TypeDate
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME":
		return types.TypeTimestamp
	case "TEXT", "VARCHAR", "CHAR", "NVARCHAR", "CHARACTER VARYING":
		return types.TypeString
	default:
		return types.TypeString
	}
}

