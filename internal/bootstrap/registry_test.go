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

package bootstrap

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/provideropts"
	"github.com/nicopon/dtpipe/internal/registry"
)

func TestIsCSVPath(t *testing.T) {
	cases := map[string]bool{
		"/tmp/export.csv":             true,
		"csv:///tmp/export.csv":       true,
		"CSV:///tmp/EXPORT.CSV":       true,
		"postgres://u:p@host/db":      false,
		"host=localhost dbname=x":     false,
		"user:pass@tcp(127.0.0.1)/db": false,
	}
	for in, want := range cases {
		if got := isCSVPath(in); got != want {
			t.Errorf("isCSVPath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsPostgresDSN(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@host/db":      true,
		"postgresql://u:p@host/db":    true,
		"host=localhost dbname=x":     true,
		"user:pass@tcp(127.0.0.1)/db": false,
		"/tmp/export.csv":             false,
	}
	for in, want := range cases {
		if got := isPostgresDSN(in); got != want {
			t.Errorf("isPostgresDSN(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsMySQLDSN(t *testing.T) {
	cases := map[string]bool{
		"user:pass@tcp(127.0.0.1:3306)/db": true,
		"user:pass@unix(/tmp/mysql.sock)/db": true,
		"postgres://u:p@host/db":           false,
		"host=localhost dbname=x":          false,
	}
	for in, want := range cases {
		if got := isMySQLDSN(in); got != want {
			t.Errorf("isMySQLDSN(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProvideRegistryResolvesCSVBeforeFallingThroughToSQL(t *testing.T) {
	reg := ProvideRegistry()
	opts := ProvideOptionsRegistry(&Config{
		SQLOptions: provideropts.SQLOptions{Table: "widgets", Strategy: "append"},
	})

	_, name, err := reg.Resolve(context.Background(), registry.KindWriter, "/tmp/out.csv", opts)
	if err != nil {
		t.Fatalf("resolve csv writer: %v", err)
	}
	if name != "csv" {
		t.Errorf("expected csv descriptor to win, got %q", name)
	}
}

func TestProvideRegistryPrefersNativePostgresOverGenericSQL(t *testing.T) {
	reg := ProvideRegistry()
	opts := ProvideOptionsRegistry(&Config{
		PostgresOptions: provideropts.PostgresOptions{Table: "widgets", Strategy: "append"},
	})

	_, name, err := reg.Resolve(context.Background(), registry.KindWriter, "postgres://u:p@host/db", opts)
	if err != nil {
		t.Fatalf("resolve postgres writer: %v", err)
	}
	if name != "postgres" {
		t.Errorf("expected postgres descriptor to win over sql fallback, got %q", name)
	}
}

func TestProvideRegistryRejectsUnconfiguredSQLWriter(t *testing.T) {
	reg := ProvideRegistry()
	opts := ProvideOptionsRegistry(&Config{})

	_, _, err := reg.Resolve(context.Background(), registry.KindWriter, "user:pass@tcp(127.0.0.1)/db", opts)
	if err == nil {
		t.Fatal("expected an error when --sql-table was never set")
	}
}
