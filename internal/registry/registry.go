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

// Package registry holds the two pieces of process-wide, mutable state
// the core requires: the OptionsRegistry (a typed bag of per-provider
// option records) and the ordered list of ProviderDescriptors used to
// resolve a connection string to a Reader, Writer or Transformer
// factory. Both are written only during the bootstrap phase and are
// safe for concurrent reads thereafter.
package registry

import (
	"context"
	"reflect"
	"sync"

	"github.com/nicopon/dtpipe/internal/types"
	"github.com/pkg/errors"
)

// Options is the typed option-record bag, one of the two pieces of
// mutable state this package defines (the other is Registry). It must
// be frozen (no further Put calls) before any pipeline component
// is constructed; from then on it is read-mostly and safe for
// concurrent use.
type Options struct {
	mu   sync.RWMutex
	vals map[reflect.Type]types.OptionSet
}

// NewOptions constructs an empty registry.
func NewOptions() *Options {
	return &Options{vals: make(map[reflect.Type]types.OptionSet)}
}

// Put installs an option-set instance, keyed by its concrete type.
func Put[T types.OptionSet](r *Options, val T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals[reflect.TypeOf(val)] = val
}

// Get returns the registered instance for T, or a newly constructed
// zero value if none was registered.
func Get[T types.OptionSet](r *Options) T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	key := reflect.TypeOf(zero)
	if found, ok := r.vals[key]; ok {
		return found.(T)
	}
	return zero
}

// Kind distinguishes the three things a ProviderDescriptor can build.
type Kind int

// The kinds of component a descriptor may construct.
const (
	KindReader Kind = iota
	KindWriter
	KindTransformer
)

// Descriptor is the single tagged-variant record every source/sink
// adapter registers. Matching a connection string to a component is
// "iterate registered descriptors of the right Kind in declaration
// order, return the first whose Accepts is true".
type Descriptor struct {
	Kind Kind

	// Name is the provider's short name, e.g. "csv", "postgres".
	Name string

	// RequiresQuery is true when Create needs a non-empty SQL query to
	// construct a Reader (most database adapters; no file adapter).
	RequiresQuery bool

	// Accepts reports whether this descriptor can handle the given
	// connection string.
	Accepts func(connectionString string) bool

	// Create constructs the Reader or Writer. The returned value must
	// be type-asserted by the caller according to Kind.
	Create func(ctx context.Context, connectionString string, registry *Options) (any, error)
}

// Registry is the ordered list of descriptors known to the process.
// Order of registration is the order candidates are tried.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
}

// NewRegistry constructs an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a descriptor. Must happen during bootstrap, before
// any Resolve call.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = append(r.descriptors, d)
}

// Resolve finds the first descriptor of the given kind whose Accepts
// predicate matches, and invokes its factory. A connection string no
// descriptor accepts surfaces a *types.Failure of kind KindConfig
// tagged "provider-not-found"; a descriptor that accepts but fails to
// construct surfaces one tagged "provider-construction", per §4.2.
func (r *Registry) Resolve(
	ctx context.Context, kind Kind, connectionString string, opts *Options,
) (any, string, error) {
	r.mu.RLock()
	candidates := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Kind == kind {
			candidates = append(candidates, d)
		}
	}
	r.mu.RUnlock()

	for _, d := range candidates {
		if !d.Accepts(connectionString) {
			continue
		}
		inst, err := d.Create(ctx, connectionString, opts)
		if err != nil {
			return nil, d.Name, types.NewFailure(types.KindConfig, "provider-construction", err).WithProvider(d.Name)
		}
		return inst, d.Name, nil
	}
	return nil, "", types.NewFailure(types.KindConfig, "provider-not-found", errors.New(connectionString))
}
