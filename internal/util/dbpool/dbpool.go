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

// Package dbpool opens standardized database/sql connection pools for
// the relational reader and writer adapters, retrying the initial ping
// the way the teacher's connection-pool helper does.
package dbpool

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql" // register driver
	_ "github.com/lib/pq"              // register driver
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Product identifies the relational backend a pool was opened against.
type Product int

// The database/sql-backed products the core adapters support directly.
const (
	ProductPostgres Product = iota
	ProductMySQL
)

func (p Product) driverName() string {
	switch p {
	case ProductMySQL:
		return "mysql"
	default:
		return "postgres"
	}
}

// Options configures Open.
type Options struct {
	// WaitForStartup retries the initial ping after any ping error,
	// one second apart, up to MaxRetries attempts in all, instead of
	// failing immediately, for targets that are still coming up.
	WaitForStartup bool
	PingTimeout    time.Duration
	MaxRetries     int
}

// Open opens a *sql.DB for product against dsn, pinging it once (with
// optional startup retries) before returning.
func Open(ctx context.Context, product Product, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open(product.driverName(), dsn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	attempts := opts.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var pingErr error
	for attempt := 0; attempt < attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			return db, nil
		}
		if !opts.WaitForStartup {
			break
		}
		log.WithError(pingErr).Info("waiting for database to become ready")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	_ = db.Close()
	return nil, errors.Wrap(pingErr, "could not ping the database")
}
