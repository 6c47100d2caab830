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

package overwrite_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/transform/overwrite"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestOverwriteSkipsNullAndReplacesOtherwise(t *testing.T) {
	tr := overwrite.New([]overwrite.Mapping{{Column: "CITY", Value: "Paris"}}, true)
	cols := []types.ColumnDescriptor{{Name: "CITY", Type: types.TypeString}}
	_, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)

	rowNull, err := tr.Transform(context.Background(), types.Row{nil})
	require.NoError(t, err)
	require.Nil(t, rowNull[0])

	rowLondon, err := tr.Transform(context.Background(), types.Row{"London"})
	require.NoError(t, err)
	require.Equal(t, "Paris", rowLondon[0])
}
