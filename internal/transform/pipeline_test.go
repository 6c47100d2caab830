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

package transform_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/nicopon/dtpipe/internal/transform"
	"github.com/nicopon/dtpipe/internal/transform/expand"
	"github.com/nicopon/dtpipe/internal/transform/filter"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestPipelineShortCircuitsOnDropAndFlatMapsOnExpand(t *testing.T) {
	p := script.NewProvider()
	f := filter.New(p, []string{"Age > 18"})
	outCols := []types.ColumnDescriptor{{Name: "Name"}, {Name: "Age"}, {Name: "Tag"}}
	e := expand.New(p, `array(row("Name", Name, "Age", Age, "Tag", "a"), row("Name", Name, "Age", Age, "Tag", "b"))`, outCols)

	pipeline := transform.New([]types.Transformer{f, e})
	cols := []types.ColumnDescriptor{{Name: "Name"}, {Name: "Age"}}
	out, err := pipeline.Initialize(context.Background(), cols)
	require.NoError(t, err)
	require.Len(t, out, 3)

	kidRows, err := pipeline.TransformMany(context.Background(), types.Row{"Kid", 10.0})
	require.NoError(t, err)
	require.Empty(t, kidRows)

	adultRows, err := pipeline.TransformMany(context.Background(), types.Row{"Adult", 25.0})
	require.NoError(t, err)
	require.Len(t, adultRows, 2)
	require.Equal(t, "a", adultRows[0][2])
	require.Equal(t, "b", adultRows[1][2])

	stats := pipeline.Stats()
	require.Equal(t, int64(2), stats["filter"])
	require.Equal(t, int64(1), stats["expand"])
}
