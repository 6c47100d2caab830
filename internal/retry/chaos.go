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

package retry

import (
	"context"
	"errors"
	"math/rand"
)

// ErrChaos is the error injected by WithChaos.
var ErrChaos = errors.New("connection reset: chaos")

// WithChaos wraps fn so that it fails with a transient-shaped error
// with probability prob before ever calling through to fn. Used by
// tests to exercise Policy.Do's retry loop deterministically. Returns
// fn unchanged if prob <= 0.
func WithChaos(fn func(ctx context.Context) error, prob float64, rng *rand.Rand) func(ctx context.Context) error {
	if prob <= 0 {
		return fn
	}
	return func(ctx context.Context) error {
		if rng.Float64() < prob {
			return ErrChaos
		}
		return fn(ctx)
	}
}

// CountingFailThenSucceed returns a unit of work that fails with
// ErrChaos for the first n calls and succeeds on every call after that,
// recording the total number of invocations in *calls.
func CountingFailThenSucceed(n int, calls *int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		*calls++
		if *calls <= n {
			return ErrChaos
		}
		return nil
	}
}
