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

package expand_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/nicopon/dtpipe/internal/transform/expand"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestExpandReplacesRowWithScriptArray(t *testing.T) {
	inCols := []types.ColumnDescriptor{{Name: "Id", Type: types.TypeInt64}}
	outCols := []types.ColumnDescriptor{{Name: "Id", Type: types.TypeInt64}, {Name: "Tag", Type: types.TypeString}}
	tr := expand.New(script.NewProvider(), `array(row("Id", Id, "Tag", "a"), row("Id", Id, "Tag", "b"))`, outCols)
	out, err := tr.Initialize(context.Background(), inCols)
	require.NoError(t, err)
	require.Equal(t, outCols, out)

	rows, err := tr.TransformMany(context.Background(), types.Row{7.0})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 7.0, rows[0][0])
	require.Equal(t, "a", rows[0][1])
	require.Equal(t, 7.0, rows[1][0])
	require.Equal(t, "b", rows[1][1])
}
