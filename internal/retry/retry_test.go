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

package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nicopon/dtpipe/internal/retry"
	"github.com/stretchr/testify/require"
)

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	fn := retry.CountingFailThenSucceed(2, &calls)

	p := retry.New(3, 10*time.Millisecond)
	start := time.Now()
	err := p.Do(context.Background(), fn)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestDoSurfacesPermanentAfterExhaustion(t *testing.T) {
	calls := 0
	fn := retry.CountingFailThenSucceed(10, &calls)

	p := retry.New(2, time.Millisecond)
	err := p.Do(context.Background(), fn)
	require.Error(t, err)
	require.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestDoDoesNotRetryNonTransient(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return errors.New("syntax error near SELECT")
	}
	p := retry.New(5, time.Millisecond)
	err := p.Do(context.Background(), fn)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDoAbortsOnCancellationDuringSleep(t *testing.T) {
	calls := 0
	fn := retry.CountingFailThenSucceed(10, &calls)

	ctx, cancel := context.WithCancel(context.Background())
	p := retry.New(5, 50*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, fn)
	require.Error(t, err)
}

func TestDefaultClassifierMatchesFixedSubstrings(t *testing.T) {
	for _, s := range []string{"timeout", "deadlock", "connection reset", "NETWORK down", "broken pipe"} {
		require.True(t, retry.DefaultClassifier(errors.New(s)), s)
	}
	require.False(t, retry.DefaultClassifier(errors.New("syntax error")))
}
