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

package format_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/transform/format"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestFormatAddsNewColumnFromTemplate(t *testing.T) {
	tr := format.New([]format.Mapping{{Column: "GREETING", Template: "Hello, {NAME}!"}})
	cols := []types.ColumnDescriptor{{Name: "NAME", Type: types.TypeString}}
	out, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "GREETING", out[1].Name)

	row, err := tr.Transform(context.Background(), types.Row{"Ada"})
	require.NoError(t, err)
	require.Equal(t, "Hello, Ada!", row[1])
}

func TestFormatNumericSpec(t *testing.T) {
	tr := format.New([]format.Mapping{{Column: "PRICE_DISPLAY", Template: "${AMOUNT:%.2f}"}})
	cols := []types.ColumnDescriptor{{Name: "AMOUNT", Type: types.TypeFloat64}}
	_, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)

	row, err := tr.Transform(context.Background(), types.Row{19.5})
	require.NoError(t, err)
	require.Equal(t, "$19.50", row[1])
}

func TestFormatOverwritesExistingColumnInPlace(t *testing.T) {
	tr := format.New([]format.Mapping{{Column: "LABEL", Template: "[{LABEL}]"}})
	cols := []types.ColumnDescriptor{{Name: "LABEL", Type: types.TypeString}}
	out, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)
	require.Len(t, out, 1)

	row, err := tr.Transform(context.Background(), types.Row{"x"})
	require.NoError(t, err)
	require.Equal(t, "[x]", row[0])
}
