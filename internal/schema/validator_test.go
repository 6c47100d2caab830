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

package schema_test

import (
	"testing"

	"github.com/nicopon/dtpipe/internal/schema"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/stretchr/testify/require"
)

func TestStaticValidateRequiredColumnMissing(t *testing.T) {
	source := []types.ColumnDescriptor{{Name: "name", Type: types.TypeString}}
	target := &types.TargetSchema{
		Exists: true,
		Columns: []types.TargetColumnDescriptor{
			{ColumnDescriptor: types.ColumnDescriptor{Name: "name", Type: types.TypeString}},
			{ColumnDescriptor: types.ColumnDescriptor{Name: "id", Type: types.TypeInt64, Nullable: false}},
		},
	}
	res := schema.StaticValidate(source, target, false, false)
	require.True(t, res.HasErrors())
	require.Len(t, res.Errors, 1)
}

func TestStaticValidateAutoMigrate(t *testing.T) {
	source := []types.ColumnDescriptor{
		{Name: "id", Type: types.TypeInt64},
		{Name: "extra", Type: types.TypeString},
	}
	target := &types.TargetSchema{
		Exists: true,
		Columns: []types.TargetColumnDescriptor{
			{ColumnDescriptor: types.ColumnDescriptor{Name: "id", Type: types.TypeInt64}},
		},
	}
	res := schema.StaticValidate(source, target, true, false)
	require.Empty(t, res.Errors)
	require.Len(t, res.AutoMigrations, 1)
	require.Equal(t, "extra", res.AutoMigrations[0].ColumnName)
}

func TestStaticValidateMissingColumnWarnsWithoutAutoMigrate(t *testing.T) {
	source := []types.ColumnDescriptor{
		{Name: "id", Type: types.TypeInt64},
		{Name: "extra", Type: types.TypeString},
	}
	target := &types.TargetSchema{
		Exists: true,
		Columns: []types.TargetColumnDescriptor{
			{ColumnDescriptor: types.ColumnDescriptor{Name: "id", Type: types.TypeInt64}},
		},
	}
	res := schema.StaticValidate(source, target, false, false)
	require.Empty(t, res.Errors)
	require.Empty(t, res.AutoMigrations)
	require.Len(t, res.Warnings, 1)
}

func TestValidateValueNullViolation(t *testing.T) {
	col := types.TargetColumnDescriptor{ColumnDescriptor: types.ColumnDescriptor{Nullable: false}}
	v := schema.ValidateValue(nil, col)
	require.True(t, v.NullViolation)

	pkCol := types.TargetColumnDescriptor{ColumnDescriptor: types.ColumnDescriptor{Nullable: false}, PrimaryKey: true}
	v2 := schema.ValidateValue(nil, pkCol)
	require.False(t, v2.NullViolation)
}

func TestValidateValueLengthViolation(t *testing.T) {
	col := types.TargetColumnDescriptor{
		ColumnDescriptor: types.ColumnDescriptor{Type: types.TypeString},
		MaxLength:        3,
	}
	v := schema.ValidateValue("abcd", col)
	require.True(t, v.LengthViolation)
	require.Equal(t, 4, v.ActualLength)
}

func TestValidateValuePrecisionViolation(t *testing.T) {
	col := types.TargetColumnDescriptor{
		ColumnDescriptor: types.ColumnDescriptor{Type: types.TypeDecimal, Precision: 5, Scale: 2},
	}
	v := schema.ValidateValue("-1234.56", col)
	require.True(t, v.PrecisionViolation)
	require.Equal(t, 4, v.ActualIntegerDigits)
	require.Equal(t, 3, v.MaxIntegerDigits)

	ok := schema.ValidateValue("12.50", col)
	require.False(t, ok.PrecisionViolation)
}
