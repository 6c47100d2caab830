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

package filter_test

import (
	"context"
	"testing"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/nicopon/dtpipe/internal/transform/filter"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestFilterKeepsOnlyRowsWhereScriptIsTrue(t *testing.T) {
	tr := filter.New(script.NewProvider(), []string{"Age > 18"})
	cols := []types.ColumnDescriptor{{Name: "Name", Type: types.TypeString}, {Name: "Age", Type: types.TypeInt64}}
	_, err := tr.Initialize(context.Background(), cols)
	require.NoError(t, err)

	kid, err := tr.Transform(context.Background(), types.Row{"Kid", 10.0})
	require.NoError(t, err)
	require.Nil(t, kid)

	adult, err := tr.Transform(context.Background(), types.Row{"Adult", 25.0})
	require.NoError(t, err)
	require.NotNil(t, adult)
	require.Equal(t, "Adult", adult[0])
}
