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

// Package provideropts holds the per-provider option-set records the
// OptionsRegistry stores, one struct per reference provider descriptor.
// Each carries the two static attributes spec.md §4.2 requires (a CLI
// flag prefix and a display name) plus whatever the provider's Create
// closure needs that a bare connection string cannot express (a SQL
// query text, a target table name, a write strategy).
package provideropts

import "github.com/spf13/pflag"

// SQLOptions configures the generic database/sql reader/writer pair.
type SQLOptions struct {
	Query    string
	Table    string
	Strategy string
}

// Prefix seeds "--sql-*" flag names.
func (SQLOptions) Prefix() string { return "sql" }

// DisplayName is shown in help text.
func (SQLOptions) DisplayName() string { return "Generic SQL (database/sql)" }

// Bind registers the sql-* flags, mirroring PipelineOptions.Bind.
func (o *SQLOptions) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.Query, "sql-query", "", "SELECT statement the sql reader issues")
	flags.StringVar(&o.Table, "sql-table", "", "target table name for the sql writer")
	flags.StringVar(&o.Strategy, "sql-strategy", "append", "write strategy: append, truncate, recreate, upsert")
}

// PostgresOptions configures the native pgx reader/writer pair.
type PostgresOptions struct {
	Query    string
	Table    string
	Strategy string
}

// Prefix seeds "--postgres-*" flag names.
func (PostgresOptions) Prefix() string { return "postgres" }

// DisplayName is shown in help text.
func (PostgresOptions) DisplayName() string { return "Native Postgres (pgx)" }

// Bind registers the postgres-* flags.
func (o *PostgresOptions) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.Query, "postgres-query", "", "SELECT statement the postgres reader issues")
	flags.StringVar(&o.Table, "postgres-table", "", "target table name for the postgres writer")
	flags.StringVar(&o.Strategy, "postgres-strategy", "append", "write strategy: append, truncate, recreate, upsert")
}
