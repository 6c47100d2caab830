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

// Package postgres implements the native pgx fast-path DataWriter:
// append/truncate/recreate batches go through pgx.CopyFrom, and upsert
// batches go through a single parameterized INSERT ... ON CONFLICT.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicopon/dtpipe/internal/dialect"
	"github.com/nicopon/dtpipe/internal/schema"
	"github.com/nicopon/dtpipe/internal/types"
)

// Writer is the pgx-native Postgres DataWriter.
type Writer struct {
	Dialect  dialect.Dialect
	DSN      string
	Table    string
	Strategy types.WriteStrategy

	pool    *pgxpool.Pool
	columns []types.TargetColumnDescriptor

	pendingTruncate bool
}

// New builds a pgx-backed Writer against table.
func New(d dialect.Dialect, dsn, table string, strategy types.WriteStrategy) *Writer {
	return &Writer{Dialect: d, DSN: dsn, Table: table, Strategy: strategy}
}

func (w *Writer) quoted(id string) string {
	if w.Dialect.NeedsQuoting(id) {
		return w.Dialect.Quote(id)
	}
	return id
}

func (w *Writer) quotedTable() string { return w.quoted(w.Table) }

// Initialize opens the connection pool and creates or reshapes the
// target table per Strategy, mirroring the generic SQL writer's rules.
func (w *Writer) Initialize(ctx context.Context, columns []types.TargetColumnDescriptor) error {
	pool, err := pgxpool.New(ctx, w.DSN)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not open sink pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return types.NewFailure(types.KindPermanentIO, "could not ping sink database", err)
	}
	w.pool = pool
	w.columns = columns

	switch w.Strategy {
	case types.StrategyRecreate:
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", w.quotedTable())); err != nil {
			return types.NewFailure(types.KindPermanentIO, "could not drop sink table", err)
		}
		if err := w.createTable(ctx, columns); err != nil {
			return err
		}
	case types.StrategyTruncate:
		w.pendingTruncate = true
	}
	return nil
}

func (w *Writer) createTable(ctx context.Context, columns []types.TargetColumnDescriptor) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", w.quotedTable())
	var pk []string
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", w.quoted(c.Name), nativeType(c))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.PrimaryKey {
			pk = append(pk, w.quoted(c.Name))
		}
	}
	if len(pk) > 0 {
		fmt.Fprintf(&b, ", PRIMARY KEY (%s)", strings.Join(pk, ", "))
	}
	b.WriteString(")")
	if _, err := w.pool.Exec(ctx, b.String()); err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not create sink table", err)
	}
	return nil
}

// ApplyMigrations adds columns an auto-migrate pass discovered were
// missing, same contract as the generic SQL writer's method of the
// same name.
func (w *Writer) ApplyMigrations(ctx context.Context, migrations []schema.AutoMigration) error {
	for _, m := range migrations {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			w.quotedTable(), w.quoted(m.ColumnName), m.NativeType)
		if _, err := w.pool.Exec(ctx, stmt); err != nil {
			return types.NewFailure(types.KindSchema, "could not auto-migrate sink table", err).WithColumn(m.ColumnName)
		}
	}
	return nil
}

// WriteBatch writes rows via pgx.CopyFrom for the non-upsert strategies,
// or a single parameterized ON CONFLICT statement for upsert. Both paths
// run inside one transaction, with the deferred truncate DELETE folded
// into the first batch's transaction for atomicity.
func (w *Writer) WriteBatch(ctx context.Context, rows types.Batch) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not begin sink transaction", err)
	}
	defer tx.Rollback(ctx)

	if w.pendingTruncate {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", w.quotedTable())); err != nil {
			return types.NewFailure(types.KindPermanentIO, "could not truncate sink table", err)
		}
		w.pendingTruncate = false
	}

	if w.Strategy == types.StrategyUpsert {
		if err := w.upsertBatch(ctx, tx, rows); err != nil {
			return err
		}
	} else {
		names := make([]string, len(w.columns))
		for i, c := range w.columns {
			names[i] = c.Name
		}
		src := pgx.CopyFromRows(toInterfaceRows(rows))
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{w.Table}, names, src); err != nil {
			return types.NewFailure(types.KindPermanentIO, "could not copy sink batch", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not commit sink batch", err)
	}
	return nil
}

func toInterfaceRows(rows types.Batch) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = []interface{}(r)
	}
	return out
}

// upsertBatch renders one multi-row INSERT ... ON CONFLICT statement,
// the pgx analogue of the generic writer's upsertClause.
func (w *Writer) upsertBatch(ctx context.Context, tx pgx.Tx, rows types.Batch) error {
	var pk, nonPK []types.TargetColumnDescriptor
	for _, c := range w.columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		} else {
			nonPK = append(nonPK, c)
		}
	}

	names := make([]string, len(w.columns))
	for i, c := range w.columns {
		names[i] = w.quoted(c.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", w.quotedTable(), strings.Join(names, ", "))

	args := make([]interface{}, 0, len(rows)*len(w.columns))
	placeholder := 1
	for r, row := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range w.columns {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", placeholder)
			placeholder++
			if c < len(row) {
				args = append(args, row[c])
			} else {
				args = append(args, nil)
			}
		}
		b.WriteString(")")
	}

	if len(nonPK) > 0 {
		var keys []string
		for _, c := range pk {
			keys = append(keys, w.quoted(c.Name))
		}
		var sets []string
		for _, c := range nonPK {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", w.quoted(c.Name), w.quoted(c.Name)))
		}
		fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(keys, ", "), strings.Join(sets, ", "))
	}

	if _, err := tx.Exec(ctx, b.String(), args...); err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not upsert sink batch", err)
	}
	return nil
}

// Complete closes the pool. It is idempotent.
func (w *Writer) Complete(ctx context.Context) error {
	if w.pool == nil {
		return nil
	}
	w.pool.Close()
	w.pool = nil
	return nil
}

func nativeType(c types.TargetColumnDescriptor) string {
	if c.NativeType != "" {
		return c.NativeType
	}
	switch c.Type {
	case types.TypeInt64:
		return "BIGINT"
	case types.TypeFloat64:
		return "DOUBLE PRECISION"
	case types.TypeDecimal:
		return "DECIMAL"
	case types.TypeBool:
		return "BOOLEAN"
	case types.TypeBytes:
		return "BYTEA"
	case types.TypeDate:
		return "DATE"
	case types.TypeTimestamp:
		return "TIMESTAMP"
	default:
		if c.MaxLength > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.MaxLength)
		}
		return "TEXT"
	}
}
