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

// Package schema implements the two levels of schema compatibility
// checking between a source's column list and an existing (or
// to-be-created) target schema: a one-time static check, and a hot-path
// per-value check.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicopon/dtpipe/internal/types"
)

// AutoMigration describes one column that must be added to an existing
// target to accommodate a source column.
type AutoMigration struct {
	ColumnName string
	NativeType string
}

// StaticResult is the outcome of StaticValidate.
type StaticResult struct {
	Errors         []string
	Warnings       []string
	AutoMigrations []AutoMigration
}

// HasErrors reports whether any static error was found.
func (r StaticResult) HasErrors() bool { return len(r.Errors) > 0 }

// NativeTypeFor picks a plausible native type string for a column with
// no adapter-specific override, keyed off the source's logical type.
// Adapters are free to remap this; it only needs to be a reasonable
// default for synthesizing a fresh target schema.
func NativeTypeFor(t types.LogicalType) string {
	return nativeTypeFor(t)
}

// nativeTypeFor picks a plausible native type string for an
// auto-migration, keyed off the source's logical type. Adapters are
// free to remap this; it only needs to be a reasonable default.
func nativeTypeFor(t types.LogicalType) string {
	switch t {
	case types.TypeInt64:
		return "BIGINT"
	case types.TypeFloat64:
		return "DOUBLE PRECISION"
	case types.TypeDecimal:
		return "DECIMAL"
	case types.TypeBool:
		return "BOOLEAN"
	case types.TypeBytes:
		return "BYTEA"
	case types.TypeDate:
		return "DATE"
	case types.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// compatible reports whether a source logical type can be written into
// a target column without a lossy reinterpretation. STRING is the
// universal fallback: everything can be rendered as a string.
func compatible(source types.LogicalType, target types.TargetColumnDescriptor) bool {
	if target.Type == types.TypeString {
		return true
	}
	if target.Type == source {
		return true
	}
	// Widening numeric conversions are compatible (but may warrant a
	// warning handled separately).
	switch {
	case source == types.TypeInt64 && target.Type == types.TypeFloat64:
		return true
	case source == types.TypeInt64 && target.Type == types.TypeDecimal:
		return true
	case source == types.TypeFloat64 && target.Type == types.TypeDecimal:
		return true
	}
	return false
}

// widens reports whether mapping source into target's type may lose
// precision, for warning purposes.
func widens(source types.LogicalType, target types.TargetColumnDescriptor) bool {
	if target.Type == source {
		return false
	}
	switch {
	case source == types.TypeFloat64 && target.Type == types.TypeDecimal:
		return true
	case source == types.TypeInt64 && target.Type == types.TypeFloat64:
		return true
	}
	return false
}

// StaticValidate compares sourceColumns against target, per §4.6.
// autoMigrate and strictSchema gate whether missing columns are
// reported as auto-migrations or left as warnings/errors.
func StaticValidate(
	sourceColumns []types.ColumnDescriptor, target *types.TargetSchema, autoMigrate, strictSchema bool,
) StaticResult {
	var res StaticResult

	bySource := make(map[string]types.ColumnDescriptor, len(sourceColumns))
	for _, c := range sourceColumns {
		bySource[c.Name] = c
	}

	if target.Exists {
		for _, tc := range target.Columns {
			src, found := bySource[tc.Name]
			switch {
			case !found && !tc.Nullable && !tc.PrimaryKey:
				res.Errors = append(res.Errors, fmt.Sprintf(
					"target column %q is required (non-nullable, no default) but is absent on source", tc.Name))
			case found && !compatible(src.Type, tc):
				res.Errors = append(res.Errors, fmt.Sprintf(
					"source column %q (%s) has no compatible mapping to target column %q (%s)",
					src.Name, src.Type, tc.Name, tc.Type))
			case found && widens(src.Type, tc):
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"source column %q (%s) widens into target column %q (%s); precision may be lost",
					src.Name, src.Type, tc.Name, tc.Type))
			}
		}

		byTarget := make(map[string]struct{}, len(target.Columns))
		for _, tc := range target.Columns {
			byTarget[tc.Name] = struct{}{}
		}
		for _, sc := range sourceColumns {
			if _, found := byTarget[sc.Name]; found {
				continue
			}
			if autoMigrate && !strictSchema {
				res.AutoMigrations = append(res.AutoMigrations, AutoMigration{
					ColumnName: sc.Name,
					NativeType: nativeTypeFor(sc.Type),
				})
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"source column %q missing on target and will be dropped", sc.Name))
			}
		}
	}

	return res
}

// ValueViolation is the result of ValidateValue.
type ValueViolation struct {
	NullViolation      bool
	LengthViolation    bool
	PrecisionViolation bool
	ActualLength       int
	ActualIntegerDigits int
	MaxIntegerDigits    int
}

// Violated reports whether any violation flag is set.
func (v ValueViolation) Violated() bool {
	return v.NullViolation || v.LengthViolation || v.PrecisionViolation
}

// stringForm renders value the way it would be written to the sink, for
// length/precision checks.
func stringForm(value types.Value) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// integerDigitCount strips a leading sign and counts the digits before
// any decimal point.
func integerDigitCount(s string) int {
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits
}

// ValidateValue applies the hot-path, per-value rules from §4.6.
func ValidateValue(value types.Value, col types.TargetColumnDescriptor) ValueViolation {
	var v ValueViolation

	if value == nil {
		if !col.Nullable && !col.PrimaryKey {
			v.NullViolation = true
		}
		return v
	}

	if col.Type == types.TypeString && col.MaxLength > 0 {
		s := stringForm(value)
		v.ActualLength = len(s)
		if v.ActualLength > col.MaxLength {
			v.LengthViolation = true
		}
	}

	if col.Precision > 0 {
		s := stringForm(value)
		v.ActualIntegerDigits = integerDigitCount(s)
		v.MaxIntegerDigits = col.Precision - col.Scale
		if v.ActualIntegerDigits > v.MaxIntegerDigits {
			v.PrecisionViolation = true
		}
	}

	return v
}

// ParseFloat parses s as a 64-bit float; it is a thin wrapper around
// strconv.ParseFloat.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
