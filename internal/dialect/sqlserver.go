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

// sqlServerReservedWords is a representative subset of the Transact-SQL
// reserved keyword list.
var sqlServerReservedWords = setOf(
	"ADD", "ALL", "ALTER", "AND", "ANY", "AS", "ASC", "AUTHORIZATION",
	"BACKUP", "BEGIN", "BETWEEN", "BREAK", "BROWSE", "BULK", "BY",
	"CASCADE", "CASE", "CHECK", "CHECKPOINT", "CLOSE", "CLUSTERED",
	"COALESCE", "COLLATE", "COLUMN", "COMMIT", "COMPUTE", "CONSTRAINT",
	"CONTAINS", "CONTINUE", "CONVERT", "CREATE", "CROSS", "CURRENT",
	"CURSOR", "DATABASE", "DEFAULT", "DELETE", "DENY", "DESC", "DISTINCT",
	"DROP", "ELSE", "END", "ESCAPE", "EXCEPT", "EXEC", "EXECUTE", "EXISTS",
	"EXTERNAL", "FETCH", "FILE", "FILLFACTOR", "FOR", "FOREIGN", "FREETEXT",
	"FROM", "FULL", "FUNCTION", "GOTO", "GRANT", "GROUP", "HAVING",
	"IDENTITY", "IF", "IN", "INDEX", "INNER", "INSERT", "INTERSECT",
	"INTO", "IS", "JOIN", "KEY", "KILL", "LEFT", "LIKE", "LINENO", "LOAD",
	"MERGE", "NOT", "NULL", "OF", "OFF", "ON", "OPEN", "OPTION", "OR",
	"ORDER", "OUTER", "OVER", "PLAN", "PRIMARY", "PROCEDURE", "PUBLIC",
	"RAISERROR", "READ", "REFERENCES", "REPLICATION", "RESTORE",
	"RETURN", "REVERT", "REVOKE", "RIGHT", "ROLLBACK", "ROWCOUNT", "RULE",
	"SAVE", "SCHEMA", "SELECT", "SESSION_USER", "SET", "SHUTDOWN", "SOME",
	"STATISTICS", "TABLE", "THEN", "TO", "TOP", "TRAN", "TRANSACTION",
	"TRIGGER", "TRUNCATE", "UNION", "UNIQUE", "UPDATE", "USE", "USER",
	"VALUES", "VIEW", "WHEN", "WHERE", "WHILE", "WITH",
)

// sqlServerDialect preserves the case of unquoted identifiers; SQL
// Server does not fold identifier case.
type sqlServerDialect struct{}

// SQLServer is the shared Dialect instance for SQL Server.
var SQLServer Dialect = sqlServerDialect{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) Normalize(id string) string { return id }

func (d sqlServerDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, sqlServerReservedWords, id)
}

func (sqlServerDialect) Quote(id string) string { return "[" + id + "]" }

// sqliteDialect also preserves case, mirroring SQLite's permissive,
// case-preserving identifier handling.
type sqliteDialect struct{}

// SQLite is the shared Dialect instance for SQLite.
var SQLite Dialect = sqliteDialect{}

var sqliteReservedWords = setOf(
	"ABORT", "ACTION", "ADD", "AFTER", "ALL", "ALTER", "ANALYZE", "AND",
	"AS", "ASC", "ATTACH", "AUTOINCREMENT", "BEFORE", "BEGIN", "BETWEEN",
	"BY", "CASCADE", "CASE", "CAST", "CHECK", "COLLATE", "COLUMN",
	"COMMIT", "CONFLICT", "CONSTRAINT", "CREATE", "CROSS", "CURRENT",
	"DATABASE", "DEFAULT", "DEFERRABLE", "DELETE", "DESC", "DISTINCT",
	"DROP", "EACH", "ELSE", "END", "ESCAPE", "EXCEPT", "EXISTS",
	"EXPLAIN", "FAIL", "FOR", "FOREIGN", "FROM", "GROUP", "HAVING", "IF",
	"IN", "INDEX", "INNER", "INSERT", "INTERSECT", "INTO", "IS", "JOIN",
	"KEY", "LEFT", "LIKE", "LIMIT", "NOT", "NULL", "OF", "OFFSET", "ON",
	"OR", "ORDER", "OUTER", "PRIMARY", "REFERENCES", "RIGHT",
	"ROLLBACK", "ROW", "SELECT", "SET", "TABLE", "TEMP", "TEMPORARY",
	"THEN", "TO", "TRANSACTION", "TRIGGER", "UNION", "UNIQUE", "UPDATE",
	"USING", "VALUES", "VIEW", "WHEN", "WHERE", "WITH",
)

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Normalize(id string) string { return id }

func (d sqliteDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, sqliteReservedWords, id)
}

func (sqliteDialect) Quote(id string) string { return `"` + id + `"` }
