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

// Package csv implements the reference file-backed DataWriter: rows are
// buffered and flushed to a CSV file at each WriteBatch call.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/nicopon/dtpipe/internal/types"
)

// Writer appends rows to a CSV file, writing the target column names as
// a header on Initialize.
type Writer struct {
	Path string

	file *os.File
	csvW *csv.Writer
}

// New builds a csv Writer over path.
func New(path string) *Writer {
	return &Writer{Path: path}
}

// Initialize creates (or truncates) the file and writes the header row.
func (w *Writer) Initialize(ctx context.Context, columns []types.TargetColumnDescriptor) error {
	f, err := os.Create(w.Path)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not create sink file", err)
	}
	w.file = f
	w.csvW = csv.NewWriter(f)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	if err := w.csvW.Write(header); err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not write header row", err)
	}
	w.csvW.Flush()
	return nil
}

// WriteBatch appends rows, flushed before returning.
func (w *Writer) WriteBatch(ctx context.Context, rows types.Batch) error {
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = stringOf(v)
		}
		if err := w.csvW.Write(record); err != nil {
			return types.NewFailure(types.KindPermanentIO, "could not write sink row", err)
		}
	}
	w.csvW.Flush()
	return w.csvW.Error()
}

// Complete flushes any buffered data and closes the file. It is
// idempotent.
func (w *Writer) Complete(ctx context.Context) error {
	if w.file == nil {
		return nil
	}
	w.csvW.Flush()
	f := w.file
	w.file = nil
	return f.Close()
}

func stringOf(v types.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
