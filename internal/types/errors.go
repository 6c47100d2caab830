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

package types

import "github.com/pkg/errors"

// Kind classifies a Failure so that callers (and exit-code mapping in a
// hosting CLI) can react without parsing messages.
type Kind int

// The error kinds a run may surface.
const (
	KindUnknown Kind = iota
	KindConfig
	KindSchema
	KindTransient
	KindPermanentIO
	KindScript
	KindCancelled
)

// String renders the kind for logs.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindSchema:
		return "schema"
	case KindTransient:
		return "transient"
	case KindPermanentIO:
		return "permanent-io"
	case KindScript:
		return "script"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failure is the structured, user-visible error carried out of the
// orchestrator. Cause may be nil; when set, it is accessible via
// Unwrap/errors.As.
type Failure struct {
	Kind     Kind
	Message  string
	Provider string // optional
	Column   string // optional
	RowIndex int64  // optional; -1 when not applicable
	Cause    error
}

// NewFailure builds a Failure with RowIndex defaulted to "not applicable".
func NewFailure(kind Kind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, RowIndex: -1, Cause: cause}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	msg := f.Message
	if f.Provider != "" {
		msg = f.Provider + ": " + msg
	}
	if f.Cause != nil {
		return msg + ": " + f.Cause.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (f *Failure) Unwrap() error { return f.Cause }

// WithProvider returns a copy of f annotated with a provider name.
func (f *Failure) WithProvider(name string) *Failure {
	cp := *f
	cp.Provider = name
	return &cp
}

// WithColumn returns a copy of f annotated with a column name.
func (f *Failure) WithColumn(name string) *Failure {
	cp := *f
	cp.Column = name
	return &cp
}

// WithRowIndex returns a copy of f annotated with a row index.
func (f *Failure) WithRowIndex(idx int64) *Failure {
	cp := *f
	cp.RowIndex = idx
	return &cp
}

// AsFailure returns the *Failure in err's chain, if any, following the
// same pattern as the teacher's IsLeaseBusy helper.
func AsFailure(err error) (failure *Failure, ok bool) {
	return failure, errors.As(err, &failure)
}

// IsKind reports whether err's chain contains a *Failure of the given
// kind.
func IsKind(err error, kind Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == kind
}
