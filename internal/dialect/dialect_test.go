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

package dialect_test

import (
	"testing"

	"github.com/nicopon/dtpipe/internal/dialect"
	"github.com/stretchr/testify/require"
)

func TestOracleNormalizeAndQuote(t *testing.T) {
	require.Equal(t, "NAME", dialect.Oracle.Normalize("Name"))
	require.True(t, dialect.Oracle.NeedsQuoting("Name"))
	require.Equal(t, `"Name"`, dialect.Oracle.Quote("Name"))
}

func TestPostgresReservedAndPlain(t *testing.T) {
	require.True(t, dialect.Postgres.NeedsQuoting("user"))
	require.False(t, dialect.Postgres.NeedsQuoting("users"))
}

func TestEveryReservedWordNeedsQuoting(t *testing.T) {
	cases := []struct {
		name string
		d    dialect.Dialect
		word string
	}{
		{"oracle", dialect.Oracle, "TABLE"},
		{"postgres", dialect.Postgres, "SELECT"},
		{"duckdb", dialect.DuckDB, "WHERE"},
		{"sqlserver", dialect.SQLServer, "TRIGGER"},
		{"sqlite", dialect.SQLite, "INDEX"},
		{"mysql", dialect.MySQL, "DATABASE"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.True(t, c.d.NeedsQuoting(c.word))
			require.True(t, c.d.NeedsQuoting(c.word+" space"))
		})
	}
}

func TestNonBareIdentifiersAlwaysNeedQuoting(t *testing.T) {
	for _, d := range []dialect.Dialect{
		dialect.Oracle, dialect.Postgres, dialect.DuckDB,
		dialect.SQLServer, dialect.SQLite, dialect.MySQL,
	} {
		require.True(t, d.NeedsQuoting("has space"))
		require.True(t, d.NeedsQuoting("has-dash"))
		require.True(t, d.NeedsQuoting("9startsWithDigit"))
	}
}

func TestSQLServerAndSQLiteIdentityNormalize(t *testing.T) {
	require.Equal(t, "MixedCase", dialect.SQLServer.Normalize("MixedCase"))
	require.Equal(t, "MixedCase", dialect.SQLite.Normalize("MixedCase"))
	require.Equal(t, "[MixedCase]", dialect.SQLServer.Quote("MixedCase"))
}

func TestMySQLQuoteCharacter(t *testing.T) {
	require.Equal(t, "`col`", dialect.MySQL.Quote("col"))
}
