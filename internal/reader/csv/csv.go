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

// Package csv implements the reference file-backed StreamReader: a CSV
// file read with its header row treated as the column list. Unlike
// relational readers, it never requires a query.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/nicopon/dtpipe/internal/types"
)

// Reader streams rows from a CSV file, with every value typed STRING —
// this is the deliberately type-erased file adapter the engine's schema
// and fake/format transformers upcast from.
type Reader struct {
	Path string

	file    *os.File
	csvR    *csv.Reader
	columns []types.ColumnDescriptor
}

// New builds a csv Reader over path.
func New(path string) *Reader {
	return &Reader{Path: path}
}

// Open opens the file and reads its header row as the column list.
func (r *Reader) Open(ctx context.Context) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not open source file", err)
	}
	r.file = f
	r.csvR = csv.NewReader(f)

	header, err := r.csvR.Read()
	if err != nil {
		_ = f.Close()
		return types.NewFailure(types.KindPermanentIO, "could not read header row", err)
	}
	r.columns = make([]types.ColumnDescriptor, len(header))
	for i, name := range header {
		r.columns[i] = types.ColumnDescriptor{Name: name, Type: types.TypeString, Nullable: true}
	}
	return nil
}

// Columns returns the header-derived schema.
func (r *Reader) Columns() []types.ColumnDescriptor { return r.columns }

// ReadBatches streams the remaining CSV rows in batches of at most
// batchSize rows.
func (r *Reader) ReadBatches(ctx context.Context, batchSize int) (<-chan types.Batch, <-chan error) {
	out := make(chan types.Batch, 2)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		batch := make(types.Batch, 0, batchSize)
		for {
			select {
			case <-ctx.Done():
				errc <- types.NewFailure(types.KindCancelled, "read cancelled", ctx.Err())
				return
			default:
			}

			record, err := r.csvR.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				errc <- types.NewFailure(types.KindPermanentIO, "could not read source row", err)
				return
			}
			row := make(types.Row, len(record))
			for i, v := range record {
				row[i] = v
			}
			batch = append(batch, row)

			if len(batch) >= batchSize {
				out <- batch
				batch = make(types.Batch, 0, batchSize)
			}
		}
		if len(batch) > 0 {
			out <- batch
		}
	}()

	return out, errc
}

// Close releases the file handle. It is idempotent.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}
