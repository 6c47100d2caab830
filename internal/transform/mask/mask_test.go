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

package mask_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/transform/mask"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestMaskAppliesHashKeepsAndLiteralReplaces(t *testing.T) {
	tr := mask.New([]mask.Mapping{{Column: "CARD", Pattern: "####-####-####-####"}}, false)
	cols := []types.ColumnDescriptor{{Name: "CARD", Type: types.TypeString}}
	_, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)

	out, err := tr.Transform(context.Background(), types.Row{"4111222233334444"})
	require.NoError(t, err)
	require.Equal(t, "4111-2223-3344-4", out[0])
}

func TestMaskSkipNullLeavesNullUnchanged(t *testing.T) {
	tr := mask.New([]mask.Mapping{{Column: "SSN", Pattern: "###-##-####"}}, true)
	cols := []types.ColumnDescriptor{{Name: "SSN", Type: types.TypeString}}
	_, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)

	out, err := tr.Transform(context.Background(), types.Row{nil})
	require.NoError(t, err)
	require.Nil(t, out[0])
}

func TestMaskUnknownColumnFailsInitialize(t *testing.T) {
	tr := mask.New([]mask.Mapping{{Column: "MISSING", Pattern: "#"}}, false)
	_, err := tr.Initialize(context.Background(), []types.ColumnDescriptor{{Name: "CARD"}})
	require.Error(t, err)
}
