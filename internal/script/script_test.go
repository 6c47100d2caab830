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

package script_test

import (
	"testing"

	"github.com/nicopon/dtpipe/internal/script"
	"github.com/stretchr/testify/require"
)

func TestFilterExpressionEvaluatesTruthy(t *testing.T) {
	p := script.NewProvider()
	h, err := p.Compile("Age > 18")
	require.NoError(t, err)

	keep, err := p.Eval(h, map[string]interface{}{"Name": "Adult", "Age": 25.0})
	require.NoError(t, err)
	require.Equal(t, true, keep)

	drop, err := p.Eval(h, map[string]interface{}{"Name": "Kid", "Age": 10.0})
	require.NoError(t, err)
	require.Equal(t, false, drop)
}

func TestExpandScriptBuildsRowArray(t *testing.T) {
	p := script.NewProvider()
	h, err := p.Compile(`array(row("Id", Id, "Tag", "a"), row("Id", Id, "Tag", "b"))`)
	require.NoError(t, err)

	result, err := p.Eval(h, map[string]interface{}{"Id": 7.0})
	require.NoError(t, err)

	rows, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)

	first := rows[0].(map[string]interface{})
	require.Equal(t, "a", first["Tag"])
	require.Equal(t, 7.0, first["Id"])
}

func TestCompileInvalidScriptReturnsScriptFailure(t *testing.T) {
	p := script.NewProvider()
	_, err := p.Compile("Age >")
	require.Error(t, err)
}
