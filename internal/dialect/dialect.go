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

// Package dialect decides how a bare identifier is written into a SQL
// string for a given backend family: case normalization, the need for
// quoting, and the quote characters themselves.
package dialect

import "strings"

// Dialect is implemented once per supported database family. All
// operations are pure and synchronous.
type Dialect interface {
	// Name identifies the dialect in logs and error messages.
	Name() string

	// Normalize maps a bare identifier to the case this backend uses
	// for unquoted identifiers.
	Normalize(id string) string

	// NeedsQuoting reports whether id must be quoted to round-trip
	// through this backend unchanged.
	NeedsQuoting(id string) bool

	// Quote wraps id with this dialect's quote characters. Callers are
	// expected to check NeedsQuoting first if they want to avoid
	// quoting identifiers that don't need it, but Quote itself always
	// quotes.
	Quote(id string) string
}

// isBareIdentifier reports whether id matches [A-Za-z_][A-Za-z0-9_]*.
func isBareIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			// always fine
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// setOf builds a reserved-word membership set from a literal word list.
func setOf(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// reservedLookup returns true if id case-folds to a member of words.
func reservedLookup(words map[string]struct{}, id string) bool {
	_, ok := words[strings.ToUpper(id)]
	return ok
}

// needsQuoting implements the three-part rule shared by every dialect:
// non-bare characters, reserved words, or a normalize that changes the
// identifier's case (case-preservation requirement).
func needsQuoting(d Dialect, reserved map[string]struct{}, id string) bool {
	if !isBareIdentifier(id) {
		return true
	}
	if reservedLookup(reserved, id) {
		return true
	}
	return id != d.Normalize(id)
}
