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

// Package script provides the ScriptEngineProvider interface used by
// the filter and expand transformers, backed by
// github.com/Knetic/govaluate. A Provider compiles each source once into
// a Handle; handles are in-memory expressions and the Provider has no
// Close method.
package script

import (
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/nicopon/dtpipe/internal/types"
	"github.com/pkg/errors"
)

// Handle is an opaque, compiled script. It is only ever produced by
// Compile and only ever consumed by Eval on the same Provider.
type Handle interface{}

// Provider compiles scripts once and evaluates them many times. A
// Provider is single-threaded per handle: the pipeline guarantees
// sequential invocation, so implementations need no internal locking.
type Provider interface {
	// Compile parses source into a reusable Handle.
	Compile(source string) (Handle, error)

	// Eval runs handle against a row-shaped map of column name to
	// value.
	Eval(handle Handle, row map[string]interface{}) (interface{}, error)
}

// govaluateProvider implements Provider with govaluate.
type govaluateProvider struct {
	functions map[string]govaluate.ExpressionFunction
}

// NewProvider builds the default govaluate-backed Provider, with the
// row() and array() functions registered so that expand scripts can
// build a []map[string]interface{} from otherwise scalar-typed
// govaluate expressions.
func NewProvider() Provider {
	p := &govaluateProvider{functions: map[string]govaluate.ExpressionFunction{}}
	p.functions["row"] = rowFunction
	p.functions["array"] = arrayFunction
	return p
}

// rowFunction builds one row-shaped map from alternating
// (columnName, value) arguments: row("id", 7, "tag", "a").
func rowFunction(args ...interface{}) (interface{}, error) {
	if len(args)%2 != 0 {
		return nil, errors.New("row(...) requires an even number of arguments")
	}
	out := make(map[string]interface{}, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, errors.Errorf("row(...) argument %d must be a column name string", i)
		}
		out[key] = args[i+1]
	}
	return out, nil
}

// arrayFunction collects its arguments (typically row(...) results)
// into an ordered slice.
func arrayFunction(args ...interface{}) (interface{}, error) {
	out := make([]interface{}, len(args))
	copy(out, args)
	return out, nil
}

func (p *govaluateProvider) Compile(source string) (Handle, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(source, p.functions)
	if err != nil {
		return nil, types.NewFailure(types.KindScript, fmt.Sprintf("failed to compile script %q", source), err)
	}
	return expr, nil
}

func (p *govaluateProvider) Eval(handle Handle, row map[string]interface{}) (interface{}, error) {
	expr, ok := handle.(*govaluate.EvaluableExpression)
	if !ok {
		return nil, types.NewFailure(types.KindScript, "invalid script handle", nil)
	}
	result, err := expr.Evaluate(row)
	if err != nil {
		return nil, types.NewFailure(types.KindScript, "script evaluation failed", err)
	}
	return result, nil
}

// RowToMap converts a Row into the {column_name: value} map scripts
// evaluate against.
func RowToMap(columns []types.ColumnDescriptor, row types.Row) map[string]interface{} {
	out := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		if i < len(row) {
			out[c.Name] = row[i]
		}
	}
	return out
}

// MapToRow converts a row-shaped map back into a positional Row,
// following the given column order. Columns absent from m become nil
// (null).
func MapToRow(columns []types.ColumnDescriptor, m map[string]interface{}) types.Row {
	out := make(types.Row, len(columns))
	for i, c := range columns {
		out[i] = m[c.Name]
	}
	return out
}
