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

package dialect

import "strings"

// postgresReservedWords is a representative subset of PostgreSQL's
// reserved keyword list.
var postgresReservedWords = setOf(
	"ALL", "ANALYSE", "ANALYZE", "AND", "ANY", "ARRAY", "AS", "ASC",
	"ASYMMETRIC", "BOTH", "CASE", "CAST", "CHECK", "COLLATE", "COLUMN",
	"CONSTRAINT", "CREATE", "CURRENT_DATE", "CURRENT_ROLE",
	"CURRENT_TIME", "CURRENT_TIMESTAMP", "CURRENT_USER", "DEFAULT",
	"DEFERRABLE", "DESC", "DISTINCT", "DO", "ELSE", "END", "EXCEPT",
	"FALSE", "FOR", "FOREIGN", "FROM", "GRANT", "GROUP", "HAVING", "IN",
	"INITIALLY", "INTERSECT", "INTO", "LEADING", "LIMIT", "LOCALTIME",
	"LOCALTIMESTAMP", "NEW", "NOT", "NULL", "OFF", "OFFSET", "OLD", "ON",
	"ONLY", "OR", "ORDER", "PLACING", "PRIMARY", "REFERENCES", "SELECT",
	"SESSION_USER", "SOME", "SYMMETRIC", "TABLE", "THEN", "TO",
	"TRAILING", "TRUE", "UNION", "UNIQUE", "USER", "USING", "VARIADIC",
	"WHEN", "WHERE", "WINDOW", "WITH",
)

// postgresDialect normalizes unquoted identifiers to lower case, the
// case PostgreSQL folds unquoted identifiers to.
type postgresDialect struct{}

// Postgres is the shared Dialect instance for PostgreSQL.
var Postgres Dialect = postgresDialect{}

func (postgresDialect) Name() string { return "postgresql" }

func (postgresDialect) Normalize(id string) string { return strings.ToLower(id) }

func (d postgresDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, postgresReservedWords, id)
}

func (postgresDialect) Quote(id string) string { return `"` + id + `"` }

// duckDBDialect shares PostgreSQL's case-folding and quoting rules but
// keeps its own (smaller) reserved-word list, since DuckDB's SQL
// surface is a PostgreSQL-compatible dialect with its own keyword set.
type duckDBDialect struct{}

// DuckDB is the shared Dialect instance for DuckDB.
var DuckDB Dialect = duckDBDialect{}

var duckDBReservedWords = setOf(
	"ALL", "AND", "ANY", "AS", "ASC", "BETWEEN", "CASE", "CAST", "CHECK",
	"COLLATE", "COLUMN", "CONSTRAINT", "CREATE", "CROSS", "CURRENT_DATE",
	"CURRENT_TIME", "CURRENT_TIMESTAMP", "DEFAULT", "DELETE", "DESC",
	"DISTINCT", "DROP", "ELSE", "END", "EXISTS", "FALSE", "FOR",
	"FOREIGN", "FROM", "GROUP", "HAVING", "IN", "INNER", "INSERT",
	"INTERSECT", "INTO", "IS", "JOIN", "LEFT", "LIKE", "LIMIT", "NOT",
	"NULL", "ON", "OR", "ORDER", "OUTER", "PRIMARY", "REFERENCES",
	"RIGHT", "SELECT", "TABLE", "THEN", "TRUE", "UNION", "UNIQUE",
	"UPDATE", "USING", "VALUES", "WHEN", "WHERE", "WITH",
)

func (duckDBDialect) Name() string { return "duckdb" }

func (duckDBDialect) Normalize(id string) string { return strings.ToLower(id) }

func (d duckDBDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, duckDBReservedWords, id)
}

func (duckDBDialect) Quote(id string) string { return `"` + id + `"` }
