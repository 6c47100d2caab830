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

// Package bootstrap wires the registry, the reference provider
// descriptors and a PipelineOptions instance into a runnable
// Orchestrator, the way the teacher's internal/source/logical and
// internal/source/mylogical packages wire a Wire provider set into a
// running logical replication loop.
package bootstrap

import (
	"context"
	"strings"

	"github.com/nicopon/dtpipe/internal/dialect"
	csvreader "github.com/nicopon/dtpipe/internal/reader/csv"
	postgresreader "github.com/nicopon/dtpipe/internal/reader/postgres"
	sqlreader "github.com/nicopon/dtpipe/internal/reader/sql"
	"github.com/nicopon/dtpipe/internal/provideropts"
	"github.com/nicopon/dtpipe/internal/registry"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/nicopon/dtpipe/internal/util/dbpool"
	csvwriter "github.com/nicopon/dtpipe/internal/writer/csv"
	postgreswriter "github.com/nicopon/dtpipe/internal/writer/postgres"
	sqlwriter "github.com/nicopon/dtpipe/internal/writer/sql"
	"github.com/pkg/errors"
)

// isCSVPath reports whether connectionString looks like a path to a
// CSV file rather than a database DSN.
func isCSVPath(connectionString string) bool {
	lower := strings.ToLower(connectionString)
	return strings.HasSuffix(lower, ".csv") || strings.HasPrefix(lower, "csv://")
}

// trimCSVScheme strips an optional "csv://" prefix so the reader sees
// a bare filesystem path.
func trimCSVScheme(connectionString string) string {
	return strings.TrimPrefix(connectionString, "csv://")
}

// isPostgresDSN reports whether connectionString is shaped like a
// native Postgres DSN: a libpq URL or "key=value" connstring whose
// keys are Postgres-specific. Checked before the generic sql
// descriptors so Postgres strings prefer the pgx fast path.
func isPostgresDSN(connectionString string) bool {
	lower := strings.ToLower(connectionString)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return true
	case strings.Contains(lower, "host=") && !strings.Contains(lower, "@tcp("):
		return true
	default:
		return false
	}
}

// isMySQLDSN reports whether connectionString is shaped like a MySQL
// DSN in the go-sql-driver/mysql "user:pass@tcp(host:port)/db" form.
func isMySQLDSN(connectionString string) bool {
	return strings.Contains(connectionString, "@tcp(") || strings.Contains(connectionString, "@unix(")
}

// ProvideRegistry registers the six reference provider descriptors:
// csv and native postgres and generic sql, each as a reader/writer
// pair. Accepts predicates run in registration order, so postgres is
// registered ahead of the generic sql fallback.
func ProvideRegistry() *registry.Registry {
	r := registry.NewRegistry()

	r.Register(registry.Descriptor{
		Kind:          registry.KindReader,
		Name:          "csv",
		RequiresQuery: false,
		Accepts:       isCSVPath,
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			return csvreader.New(trimCSVScheme(connectionString)), nil
		},
	})
	r.Register(registry.Descriptor{
		Kind:          registry.KindWriter,
		Name:          "csv",
		RequiresQuery: false,
		Accepts:       isCSVPath,
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			return csvwriter.New(trimCSVScheme(connectionString)), nil
		},
	})

	r.Register(registry.Descriptor{
		Kind:          registry.KindReader,
		Name:          "postgres",
		RequiresQuery: true,
		Accepts:       isPostgresDSN,
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			o := registry.Get[provideropts.PostgresOptions](opts)
			if o.Query == "" {
				return nil, errors.New("postgres reader requires --postgres-query")
			}
			return postgresreader.New(dialect.Postgres, connectionString, o.Query), nil
		},
	})
	r.Register(registry.Descriptor{
		Kind:          registry.KindWriter,
		Name:          "postgres",
		RequiresQuery: false,
		Accepts:       isPostgresDSN,
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			o := registry.Get[provideropts.PostgresOptions](opts)
			if o.Table == "" {
				return nil, errors.New("postgres writer requires --postgres-table")
			}
			strategy, ok := types.ParseWriteStrategy(o.Strategy)
			if !ok {
				return nil, errors.Errorf("unrecognized postgres write strategy %q", o.Strategy)
			}
			return postgreswriter.New(dialect.Postgres, connectionString, o.Table, strategy), nil
		},
	})

	r.Register(registry.Descriptor{
		Kind:          registry.KindReader,
		Name:          "sql",
		RequiresQuery: true,
		Accepts:       func(s string) bool { return !isCSVPath(s) },
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			o := registry.Get[provideropts.SQLOptions](opts)
			if o.Query == "" {
				return nil, errors.New("sql reader requires --sql-query")
			}
			product := dbpool.ProductPostgres
			d := dialect.Postgres
			if isMySQLDSN(connectionString) {
				product, d = dbpool.ProductMySQL, dialect.MySQL
			}
			return sqlreader.New(product, d, connectionString, o.Query), nil
		},
	})
	r.Register(registry.Descriptor{
		Kind:          registry.KindWriter,
		Name:          "sql",
		RequiresQuery: false,
		Accepts:       func(s string) bool { return !isCSVPath(s) },
		Create: func(ctx context.Context, connectionString string, opts *registry.Options) (any, error) {
			o := registry.Get[provideropts.SQLOptions](opts)
			if o.Table == "" {
				return nil, errors.New("sql writer requires --sql-table")
			}
			strategy, ok := types.ParseWriteStrategy(o.Strategy)
			if !ok {
				return nil, errors.Errorf("unrecognized sql write strategy %q", o.Strategy)
			}
			product := dbpool.ProductPostgres
			d := dialect.Postgres
			if isMySQLDSN(connectionString) {
				product, d = dbpool.ProductMySQL, dialect.MySQL
			}
			return sqlwriter.New(product, d, connectionString, o.Table, strategy), nil
		},
	})

	return r
}
