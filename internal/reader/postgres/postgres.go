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

// Package postgres implements the native, higher-throughput pgx
// StreamReader: a single connection from a pgxpool.Pool streams the
// query's result set field-by-field instead of boxing through
// database/sql's driver.Value conversion.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicopon/dtpipe/internal/dialect"
	"github.com/nicopon/dtpipe/internal/types"
)

// Reader streams rows from a single query over a pgx connection.
type Reader struct {
	Dialect dialect.Dialect
	DSN     string
	Query   string

	pool    *pgxpool.Pool
	rows    pgx.Rows
	columns []types.ColumnDescriptor
}

// New builds a pgx-native Reader.
func New(d dialect.Dialect, dsn, query string) *Reader {
	return &Reader{Dialect: d, DSN: dsn, Query: query}
}

// Open connects, issues Query, and populates Columns from the pgx field
// descriptions.
func (r *Reader) Open(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, r.DSN)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not open source pool", err)
	}
	r.pool = pool

	rows, err := pool.Query(ctx, r.Query)
	if err != nil {
		pool.Close()
		return types.NewFailure(types.KindPermanentIO, "could not issue source query", err)
	}
	r.rows = rows

	fields := rows.FieldDescriptions()
	r.columns = make([]types.ColumnDescriptor, len(fields))
	for i, f := range fields {
		name := string(f.Name)
		normalized := r.Dialect.Normalize(name)
		r.columns[i] = types.ColumnDescriptor{
			Name:          normalized,
			OriginalName:  name,
			Type:          mapOID(f.DataTypeOID),
			Nullable:      true,
			CaseSensitive: name != normalized,
		}
	}
	return nil
}

// Columns returns the schema discovered by Open.
func (r *Reader) Columns() []types.ColumnDescriptor { return r.columns }

// ReadBatches streams the open result set in batches of at most
// batchSize rows.
func (r *Reader) ReadBatches(ctx context.Context, batchSize int) (<-chan types.Batch, <-chan error) {
	out := make(chan types.Batch, 2)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		batch := make(types.Batch, 0, batchSize)
		for r.rows.Next() {
			select {
			case <-ctx.Done():
				errc <- types.NewFailure(types.KindCancelled, "read cancelled", ctx.Err())
				return
			default:
			}

			values, err := r.rows.Values()
			if err != nil {
				errc <- types.NewFailure(types.KindPermanentIO, "could not read source row", err)
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

// Close releases the result set and pool. It is idempotent.
func (r *Reader) Close() error {
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}

// mapOID maps a handful of common Postgres OIDs onto the closed
// logical type set; everything else defaults to STRING.
func mapOID(oid uint32) types.LogicalType {
	const (
		boolOID      = 16
		int8OID      = 20
		int4OID      = 23
		int2OID      = 21
		float4OID    = 700
		float8OID    = 701
		numericOID   = 1700
		dateOID      = 1082
		timestampOID = 1114
		timestamptz  = 1184
		byteaOID     = 17
	)
	switch oid {
	case int2OID, int4OID, int8OID:
		return types.TypeInt64
	case float4OID, float8OID:
		return types.TypeFloat64
	case numericOID:
		return types.TypeDecimal
	case boolOID:
		return types.TypeBool
	case byteaOID:
		return types.TypeBytes
	case dateOID:
		return types.TypeDate
	case timestampOID, timestamptz:
		return types.TypeTimestamp
	default:
		return types.TypeString
	}
}
