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

// mysqlReservedWords is a representative subset of MySQL's reserved
// keyword list.
var mysqlReservedWords = setOf(
	"ADD", "ALL", "ALTER", "ANALYZE", "AND", "AS", "ASC", "BEFORE",
	"BETWEEN", "BOTH", "BY", "CALL", "CASCADE", "CASE", "CHANGE",
	"CHARACTER", "CHECK", "COLLATE", "COLUMN", "CONDITION", "CONSTRAINT",
	"CONTINUE", "CONVERT", "CREATE", "CROSS", "CURRENT_DATE",
	"CURRENT_TIME", "CURRENT_TIMESTAMP", "CURRENT_USER", "CURSOR",
	"DATABASE", "DATABASES", "DEFAULT", "DELAYED", "DELETE", "DESC",
	"DESCRIBE", "DISTINCT", "DISTINCTROW", "DROP", "EACH", "ELSE",
	"ELSEIF", "ENCLOSED", "ESCAPED", "EXISTS", "EXIT", "EXPLAIN", "FALSE",
	"FETCH", "FOR", "FORCE", "FOREIGN", "FROM", "FULLTEXT", "GRANT",
	"GROUP", "HAVING", "IF", "IGNORE", "IN", "INDEX", "INFILE", "INNER",
	"INSERT", "INTERVAL", "INTO", "IS", "ITERATE", "JOIN", "KEY", "KEYS",
	"KILL", "LEADING", "LEAVE", "LEFT", "LIKE", "LIMIT", "LINES", "LOAD",
	"LOCALTIME", "LOCALTIMESTAMP", "LOCK", "LOOP", "MATCH", "MODIFIES",
	"NATURAL", "NOT", "NULL", "ON", "OPTIMIZE", "OPTION", "OR", "ORDER",
	"OUTER", "OUTFILE", "PRIMARY", "PROCEDURE", "PURGE", "READ",
	"REFERENCES", "REGEXP", "RENAME", "REPEAT", "REPLACE", "REQUIRE",
	"RESTRICT", "RETURN", "REVOKE", "RIGHT", "RLIKE", "SCHEMA",
	"SCHEMAS", "SELECT", "SET", "SHOW", "TABLE", "THEN", "TO", "TRAILING",
	"TRIGGER", "TRUE", "UNDO", "UNION", "UNIQUE", "UNLOCK", "UPDATE",
	"USAGE", "USE", "USING", "VALUES", "WHEN", "WHERE", "WHILE", "WITH",
)

// mysqlDialect preserves unquoted identifier case. MySQL's own case
// sensitivity actually follows the underlying filesystem for table
// names, but column identifiers round-trip unchanged, so normalize is
// the identity function here.
type mysqlDialect struct{}

// MySQL is the shared Dialect instance for the MySQL/MariaDB family.
var MySQL Dialect = mysqlDialect{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Normalize(id string) string { return id }

func (d mysqlDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, mysqlReservedWords, id)
}

func (mysqlDialect) Quote(id string) string { return "`" + id + "`" }
