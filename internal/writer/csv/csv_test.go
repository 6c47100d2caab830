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

package csv_test

import (
	"context"
	"path/filepath"
	"testing"

	readcsv "github.com/nicopon/dtpipe/internal/reader/csv"
	"github.com/nicopon/dtpipe/internal/types"
	writecsv "github.com/nicopon/dtpipe/internal/writer/csv"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterThenReaderRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := writecsv.New(path)
	cols := []types.TargetColumnDescriptor{
		{ColumnDescriptor: types.ColumnDescriptor{Name: "id"}},
		{ColumnDescriptor: types.ColumnDescriptor{Name: "name"}},
	}
	require.NoError(t, w.Initialize(context.Background(), cols))
	require.NoError(t, w.WriteBatch(context.Background(), types.Batch{{"1", "Ada"}, {"2", "Grace"}}))
	require.NoError(t, w.Complete(context.Background()))
	require.NoError(t, w.Complete(context.Background())) // idempotent

	r := readcsv.New(path)
	require.NoError(t, r.Open(context.Background()))
	require.Equal(t, []string{"id", "name"}, []string{r.Columns()[0].Name, r.Columns()[1].Name})

	batches, errc := r.ReadBatches(context.Background(), 10)
	var rows []types.Row
	for b := range batches {
		rows = append(rows, b...)
	}
	require.NoError(t, <-errc)
	require.Len(t, rows, 2)
	require.Equal(t, types.Row{"1", "Ada"}, rows[0])
	require.NoError(t, r.Close())
}

func TestCSVReaderOpenMissingFileFails(t *testing.T) {
	r := readcsv.New(filepath.Join(t.TempDir(), "missing.csv"))
	err := r.Open(context.Background())
	require.Error(t, err)
}
