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

// oracleReservedWords is a representative subset of Oracle's reserved
// keyword list, ASCII-case-insensitive.
var oracleReservedWords = setOf(
	"ACCESS", "ADD", "ALL", "ALTER", "AND", "ANY", "AS", "ASC", "AUDIT",
	"BETWEEN", "BY", "CHAR", "CHECK", "CLUSTER", "COLUMN", "COMMENT",
	"COMPRESS", "CONNECT", "CREATE", "CURRENT", "DATE", "DECIMAL",
	"DEFAULT", "DELETE", "DESC", "DISTINCT", "DROP", "ELSE", "EXCLUSIVE",
	"EXISTS", "FILE", "FLOAT", "FOR", "FROM", "GRANT", "GROUP", "HAVING",
	"IDENTIFIED", "IMMEDIATE", "IN", "INCREMENT", "INDEX", "INITIAL",
	"INSERT", "INTEGER", "INTERSECT", "INTO", "IS", "LEVEL", "LIKE",
	"LOCK", "LONG", "MAXEXTENTS", "MINUS", "MODE", "MODIFY", "NOAUDIT",
	"NOCOMPRESS", "NOT", "NOWAIT", "NULL", "NUMBER", "OF", "OFFLINE",
	"ON", "ONLINE", "OPTION", "OR", "ORDER", "PCTFREE", "PRIOR",
	"PRIVILEGES", "PUBLIC", "RAW", "RENAME", "RESOURCE", "REVOKE", "ROW",
	"ROWID", "ROWNUM", "ROWS", "SELECT", "SESSION", "SET", "SHARE",
	"SIZE", "SMALLINT", "START", "SUCCESSFUL", "SYNONYM", "SYSDATE",
	"TABLE", "THEN", "TO", "TRIGGER", "UID", "UNION", "UNIQUE", "UPDATE",
	"USER", "VALIDATE", "VALUES", "VARCHAR", "VARCHAR2", "VIEW",
	"WHENEVER", "WHERE", "WITH",
)

// oracleDialect normalizes unquoted identifiers to upper case, the
// convention Oracle applies to any identifier it did not receive
// quoted.
type oracleDialect struct{}

// Oracle is the shared Dialect instance for Oracle-family backends.
var Oracle Dialect = oracleDialect{}

func (oracleDialect) Name() string { return "oracle" }

func (oracleDialect) Normalize(id string) string { return strings.ToUpper(id) }

func (d oracleDialect) NeedsQuoting(id string) bool {
	return needsQuoting(d, oracleReservedWords, id)
}

func (oracleDialect) Quote(id string) string { return `"` + id + `"` }
