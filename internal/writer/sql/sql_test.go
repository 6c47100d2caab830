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

package sql

import (
	"testing"

	"github.com/nicopon/dtpipe/internal/dialect"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/nicopon/dtpipe/internal/util/dbpool"
	"github.com/stretchr/testify/require"
)

func testColumns() []types.TargetColumnDescriptor {
	return []types.TargetColumnDescriptor{
		{ColumnDescriptor: types.ColumnDescriptor{Name: "id", Type: types.TypeInt64}, PrimaryKey: true},
		{ColumnDescriptor: types.ColumnDescriptor{Name: "name", Type: types.TypeString}},
	}
}

func TestBuildInsertPostgresPlaceholders(t *testing.T) {
	w := &Writer{Product: dbpool.ProductPostgres, Dialect: dialect.Postgres, Table: "users", Strategy: types.StrategyAppend}
	w.columns = testColumns()

	stmt, args := w.buildInsert(types.Batch{{int64(1), "Ada"}, {int64(2), "Grace"}})
	require.Equal(t, `INSERT INTO users (id, name) VALUES ($1, $2), ($3, $4)`, stmt)
	require.Equal(t, []interface{}{int64(1), "Ada", int64(2), "Grace"}, args)
}

func TestBuildInsertMySQLUsesPositionalPlaceholder(t *testing.T) {
	w := &Writer{Product: dbpool.ProductMySQL, Dialect: dialect.MySQL, Table: "users", Strategy: types.StrategyAppend}
	w.columns = testColumns()

	stmt, _ := w.buildInsert(types.Batch{{int64(1), "Ada"}})
	require.Equal(t, `INSERT INTO users (id, name) VALUES (?, ?)`, stmt)
}

func TestUpsertClausePostgresUsesOnConflict(t *testing.T) {
	w := &Writer{Product: dbpool.ProductPostgres, Dialect: dialect.Postgres, Table: "users", Strategy: types.StrategyUpsert}
	w.columns = testColumns()

	stmt, _ := w.buildInsert(types.Batch{{int64(1), "Ada"}})
	require.Contains(t, stmt, "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name")
}

func TestUpsertClauseMySQLUsesOnDuplicateKey(t *testing.T) {
	w := &Writer{Product: dbpool.ProductMySQL, Dialect: dialect.MySQL, Table: "users", Strategy: types.StrategyUpsert}
	w.columns = testColumns()

	stmt, _ := w.buildInsert(types.Batch{{int64(1), "Ada"}})
	require.Contains(t, stmt, "ON DUPLICATE KEY UPDATE name = VALUES(name)")
}
