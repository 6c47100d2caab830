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

// Package retry wraps a unit of work with exponential-backoff retries,
// classifying errors as transient or permanent.
package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/nicopon/dtpipe/internal/types"
	log "github.com/sirupsen/logrus"
)

// Classifier reports whether err should be retried.
type Classifier func(err error) bool

// defaultTransientSubstrings is the fixed, case-insensitive substring
// set from §4.7.
var defaultTransientSubstrings = []string{
	"timeout", "deadlock", "connection", "network", "broken pipe",
	"transport", "io error", "locked", "busy", "lock", "stream",
	"not open", "socket",
}

// DefaultClassifier matches the default transient substring set against
// err's message. Implementations should prefer a backend-specific,
// structured-code classifier where one is available.
func DefaultClassifier(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range defaultTransientSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Policy wraps a unit of work with exponential-backoff retries.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Classify     Classifier

	// Jitter, when true, adds up to +/-25% jitter to each sleep, as
	// permitted (but not required) by §4.7.
	Jitter bool

	rng *rand.Rand
}

// New builds a Policy with the default classifier and a fixed-seed
// jitter source. Jitter starts off; no jitter is added unless the
// caller sets Jitter to true.
func New(maxRetries int, initialDelay time.Duration) *Policy {
	return &Policy{
		MaxRetries:   maxRetries,
		InitialDelay: initialDelay,
		Classify:     DefaultClassifier,
		rng:          rand.New(rand.NewSource(1)),
	}
}

// Do executes fn, retrying on transient failures per the policy.
// Cancellation during the backoff sleep aborts the retry and surfaces a
// *types.Failure of kind KindCancelled.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return types.NewFailure(types.KindCancelled, "cancelled during retry", ctx.Err())
		}
		classify := p.Classify
		if classify == nil {
			classify = DefaultClassifier
		}
		if !classify(lastErr) || attempt >= p.MaxRetries {
			return types.NewFailure(types.KindPermanentIO, "operation failed", lastErr)
		}

		delay := p.InitialDelay * (1 << uint(attempt))
		if p.Jitter && p.rng != nil {
			jitter := 0.75 + 0.5*p.rng.Float64() // +/-25%
			delay = time.Duration(float64(delay) * jitter)
		}
		log.WithFields(log.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
		}).WithError(lastErr).Debug("retrying transient failure")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return types.NewFailure(types.KindCancelled, "cancelled during retry backoff", ctx.Err())
		}
	}
}
