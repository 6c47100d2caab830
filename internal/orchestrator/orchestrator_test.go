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

package orchestrator

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/testutil"
	"github.com/nicopon/dtpipe/internal/transform"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func baseOptions() *types.PipelineOptions {
	return &types.PipelineOptions{
		BatchSize:    2,
		MaxRetries:   3,
		RetryDelayMS: 1,
		SamplingRate: 1.0,
	}
}

func idCols() []types.ColumnDescriptor {
	return []types.ColumnDescriptor{{Name: "id", Type: types.TypeInt64}}
}

func TestEmptyInputInitializesAndCompletesWriterWithZeroRows(t *testing.T) {
	r := testutil.NewMemoryReader(idCols(), nil)
	w := testutil.NewMemoryWriter()
	o := New(baseOptions(), r, w, transform.New(nil), nil, "mem")

	m, err := o.Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, m.ReadCount)
	require.EqualValues(t, 0, m.WriteCount)
	require.Equal(t, 1, w.Completed)
	require.NotNil(t, w.Columns)
}

func TestSingleRowFinalBatchIsWrittenNormally(t *testing.T) {
	rows := []types.Row{{int64(1)}, {int64(2)}, {int64(3)}}
	r := testutil.NewMemoryReader(idCols(), rows)
	w := testutil.NewMemoryWriter()
	opts := baseOptions()
	opts.BatchSize = 2 // 3 rows -> batches of 2 then 1
	o := New(opts, r, w, transform.New(nil), nil, "mem")

	m, err := o.Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, m.ReadCount)
	require.EqualValues(t, 3, m.WriteCount)
	require.Len(t, w.Snapshot(), 3)
}

func TestBatchSizeIsSemanticallyTransparent(t *testing.T) {
	rows := make([]types.Row, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, types.Row{int64(i)})
	}

	var outputs [][]types.Row
	for _, batchSize := range []int{1, 3, 7, 50} {
		r := testutil.NewMemoryReader(idCols(), rows)
		w := testutil.NewMemoryWriter()
		opts := baseOptions()
		opts.BatchSize = batchSize
		o := New(opts, r, w, transform.New(nil), nil, "mem")

		_, err := o.Run(context.Background())
		require.NoError(t, err)
		outputs = append(outputs, w.Snapshot())
	}
	for i := 1; i < len(outputs); i++ {
		require.Equal(t, outputs[0], outputs[i])
	}
}

func TestLimitStopsAfterExactRowCount(t *testing.T) {
	rows := make([]types.Row, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, types.Row{int64(i)})
	}
	r := testutil.NewMemoryReader(idCols(), rows)
	w := testutil.NewMemoryWriter()
	opts := baseOptions()
	opts.Limit = 5
	o := New(opts, r, w, transform.New(nil), nil, "mem")

	m, err := o.Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, m.WriteCount)
	require.Len(t, w.Snapshot(), 5)
}

func TestCompleteIsIdempotent(t *testing.T) {
	w := testutil.NewMemoryWriter()
	require.NoError(t, w.Complete(context.Background()))
	require.NoError(t, w.Complete(context.Background()))
	require.Equal(t, 2, w.Completed)
}

func TestCancellationDuringFirstBatchLeavesWriterCompletedWithZeroRows(t *testing.T) {
	rows := make([]types.Row, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows, types.Row{int64(i)})
	}
	r := testutil.NewMemoryReader(idCols(), rows)
	w := testutil.NewMemoryWriter()
	opts := baseOptions()
	opts.BatchSize = 1000 // never naturally flushes before cancellation

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := New(opts, r, w, transform.New(nil), nil, "mem")

	_, err := o.Run(ctx)
	require.Error(t, err)
	require.Equal(t, 1, w.Completed)
	require.Empty(t, w.Snapshot())
}
