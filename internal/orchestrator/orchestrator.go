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

// Package orchestrator drives one run end-to-end: pre-flight, optional
// dry-run, the sample/transform/write main loop, completion and the
// error/finally hooks, producing an ExportMetrics snapshot.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"github.com/nicopon/dtpipe/internal/metrics"
	"github.com/nicopon/dtpipe/internal/retry"
	"github.com/nicopon/dtpipe/internal/schema"
	"github.com/nicopon/dtpipe/internal/transform"
	"github.com/nicopon/dtpipe/internal/types"
	log "github.com/sirupsen/logrus"
)

// migrator is implemented by writers that can add columns to an
// already-existing target after Initialize has returned. Not every
// Writer needs to support it; a writer that always recreates its
// target has no use for it.
type migrator interface {
	ApplyMigrations(ctx context.Context, migrations []schema.AutoMigration) error
}

// Orchestrator executes one run given a resolved reader, writer and
// pipeline.
type Orchestrator struct {
	Options      *types.PipelineOptions
	Reader       types.Reader
	Writer       types.Writer
	Pipeline     *transform.Pipeline
	TargetSchema *types.TargetSchema

	// ProviderName labels the prometheus series this run contributes to.
	ProviderName string
}

// New builds an Orchestrator. target may be nil, meaning the sink does
// not yet exist and its shape is synthesized from the pipeline's output
// columns.
func New(opts *types.PipelineOptions, r types.Reader, w types.Writer, p *transform.Pipeline, target *types.TargetSchema, providerName string) *Orchestrator {
	return &Orchestrator{Options: opts, Reader: r, Writer: w, Pipeline: p, TargetSchema: target, ProviderName: providerName}
}

// Run executes pre-flight, the optional dry-run, the main loop and the
// completion/error/finally phases, returning the assembled metrics. The
// error returned is the first unhandled error of the run, after the
// on-error and finally hooks have both run.
func (o *Orchestrator) Run(ctx context.Context) (*types.ExportMetrics, error) {
	m := &types.ExportMetrics{StartTime: clockNow(), TransformerStats: map[string]int64{}}

	// runCtx is cancelled once Limit is satisfied, to stop the reader
	// early; hookCtx is the caller's own context, so the orchestrator's
	// own internal cancellation never prevents the post/error/finally
	// hooks from running. An externally cancelled ctx still cancels both.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := o.run(ctx, runCtx, cancel, m)

	m.EndTime = clockNow()
	if elapsed := m.EndTime.Sub(m.StartTime).Seconds(); elapsed > 0 {
		m.OverallThroughput = float64(m.WriteCount) / elapsed
	}
	for k, v := range o.Pipeline.Stats() {
		m.TransformerStats[k] = v
		metrics.TransformerRowsProcessed.WithLabelValues(k).Add(float64(v))
	}

	if runErr != nil {
		if hookErr := o.runHook(ctx, o.Options.OnErrorExec); hookErr != nil {
			log.WithError(hookErr).Warn("on-error hook failed")
		}
	}
	if finallyErr := o.runHook(ctx, o.Options.FinallyExec); finallyErr != nil {
		log.WithError(finallyErr).Warn("finally hook failed")
	}
	if o.Options.MetricsPath != "" {
		if err := writeMetricsFile(o.Options.MetricsPath, m); err != nil {
			log.WithError(err).Warn("could not write metrics file")
		}
	}
	return m, runErr
}

// clockNow exists so tests can see a monotonically increasing,
// deterministic-enough timestamp without depending on wall time in
// assertions; production code always calls through to time.Now.
var clockNow = time.Now

func (o *Orchestrator) run(hookCtx, ctx context.Context, cancel context.CancelFunc, m *types.ExportMetrics) error {
	if err := o.runHook(hookCtx, o.Options.PreExec); err != nil {
		return types.NewFailure(types.KindPermanentIO, "pre-exec hook failed", err)
	}

	if err := o.Reader.Open(ctx); err != nil {
		return err
	}
	defer o.Reader.Close()

	columnsOut, err := o.Pipeline.Initialize(ctx, o.Reader.Columns())
	if err != nil {
		return err
	}

	staticResult := schema.StaticValidate(o.Reader.Columns(), o.effectiveTarget(), o.Options.AutoMigrate, o.Options.StrictSchema)
	for _, w := range staticResult.Warnings {
		log.Warn(w)
	}

	targetColumns := o.buildTargetColumns(columnsOut, staticResult.AutoMigrations)
	if err := o.Writer.Initialize(ctx, targetColumns); err != nil {
		return err
	}

	if o.Options.StrictSchema && staticResult.HasErrors() {
		for _, e := range staticResult.Errors {
			log.Error(e)
		}
		o.Writer.Complete(ctx)
		return types.NewFailure(types.KindSchema, "static schema validation failed", nil)
	}

	if len(staticResult.AutoMigrations) > 0 {
		if mig, ok := o.Writer.(migrator); ok {
			if err := mig.ApplyMigrations(ctx, staticResult.AutoMigrations); err != nil {
				o.Writer.Complete(ctx)
				return err
			}
		}
	}

	var runErr error
	if o.Options.DryRunCount > 0 {
		runErr = o.dryRun(ctx, cancel, m)
	} else {
		runErr = o.mainLoop(ctx, cancel, m)
	}

	// Writer.Complete runs exactly once, win or lose, so the sink is
	// never left with a dangling transaction or connection.
	if completeErr := o.Writer.Complete(ctx); runErr == nil {
		runErr = completeErr
	}
	if runErr != nil {
		return runErr
	}
	return o.runHook(hookCtx, o.Options.PostExec)
}

// effectiveTarget returns o.TargetSchema, or an empty non-existent
// schema when none was supplied, so StaticValidate always has a
// non-nil target to reason about.
func (o *Orchestrator) effectiveTarget() *types.TargetSchema {
	if o.TargetSchema != nil {
		return o.TargetSchema
	}
	return &types.TargetSchema{RowCount: -1, ByteSize: -1}
}

// buildTargetColumns produces the final column list to hand the writer:
// the existing target's columns plus any pending auto-migrations when
// the target exists, or a freshly synthesized list (one target column
// per pipeline output column) when it does not.
func (o *Orchestrator) buildTargetColumns(pipelineColumns []types.ColumnDescriptor, migrations []schema.AutoMigration) []types.TargetColumnDescriptor {
	if o.TargetSchema != nil && o.TargetSchema.Exists {
		cols := make([]types.TargetColumnDescriptor, len(o.TargetSchema.Columns))
		copy(cols, o.TargetSchema.Columns)
		for _, mig := range migrations {
			cols = append(cols, types.TargetColumnDescriptor{
				ColumnDescriptor: types.ColumnDescriptor{Name: mig.ColumnName},
				NativeType:       mig.NativeType,
				Nullable:         true,
			})
		}
		return cols
	}

	var pk []string
	if o.TargetSchema != nil {
		pk = o.TargetSchema.PrimaryKey
	}
	pkSet := make(map[string]bool, len(pk))
	for _, k := range pk {
		pkSet[k] = true
	}

	cols := make([]types.TargetColumnDescriptor, len(pipelineColumns))
	for i, c := range pipelineColumns {
		cols[i] = types.TargetColumnDescriptor{
			ColumnDescriptor: c,
			NativeType:       schema.NativeTypeFor(c.Type),
			PrimaryKey:       pkSet[c.Name],
		}
	}
	return cols
}

// dryRun reads up to Options.DryRunCount rows, runs them through the
// pipeline and prints the post-transform rows without ever touching the
// writer, per the Open Question resolved in favor of post-transformer,
// pre-write counting.
func (o *Orchestrator) dryRun(ctx context.Context, cancel context.CancelFunc, m *types.ExportMetrics) error {
	batches, errc := o.Reader.ReadBatches(ctx, o.Options.DryRunCount)
	printed := 0
	var transformErr error

	// The loop always ranges to channel close, even once enough rows
	// have been printed or a transform has failed: cancel tells the
	// reader to stop producing, but batches already in flight must
	// still be drained or the reader goroutine would block forever
	// trying to send them.
	for batch := range batches {
		if transformErr != nil || printed >= o.Options.DryRunCount {
			continue
		}
		for _, row := range batch {
			m.ReadCount++
			out, err := o.Pipeline.TransformMany(ctx, row)
			if err != nil {
				transformErr = err
				cancel()
				break
			}
			for _, r := range out {
				fmt.Println(r)
				printed++
			}
			if printed >= o.Options.DryRunCount {
				cancel()
				break
			}
		}
	}
	if readErr := <-errc; transformErr == nil {
		return readErr
	}
	return transformErr
}

// mainLoop implements phase 3: sample, transform, accumulate and write,
// honoring Limit by cancelling the reader once enough rows have been
// committed.
func (o *Orchestrator) mainLoop(ctx context.Context, cancel context.CancelFunc, m *types.ExportMetrics) error {
	policy := retry.New(o.Options.MaxRetries, time.Duration(o.Options.RetryDelayMS)*time.Millisecond)
	policy.Jitter = true

	sampler := newSampler(o.Options.SamplingRate, o.Options.HasSeed, o.Options.SamplingSeed)

	batches, errc := o.Reader.ReadBatches(ctx, o.Options.BatchSize)
	pending := make(types.Batch, 0, o.Options.BatchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		batch := pending
		pending = make(types.Batch, 0, o.Options.BatchSize)

		start := time.Now()
		err := policy.Do(ctx, func(ctx context.Context) error {
			return o.Writer.WriteBatch(ctx, batch)
		})
		metrics.BatchWriteDurations.WithLabelValues(o.ProviderName).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.BatchWriteErrors.WithLabelValues(o.ProviderName).Inc()
			return err
		}
		m.WriteCount += int64(len(batch))
		metrics.RowsWritten.WithLabelValues(o.ProviderName).Add(float64(len(batch)))
		return nil
	}

	// Like dryRun, this loop always ranges batches to channel close, even
	// after limitReached or a transform error means it no longer cares
	// about the rows: cancel tells the reader to stop producing, but
	// batches already in flight must still be drained or the reader
	// goroutine would block forever on its buffered (capacity 2) send.
	limitReached := false
	var loopErr error
	for rawBatch := range batches {
		if limitReached || loopErr != nil {
			continue
		}
		for _, row := range rawBatch {
			m.ReadCount++
			metrics.RowsRead.WithLabelValues(o.ProviderName).Inc()

			if !sampler.keep() {
				metrics.RowsSampledOut.WithLabelValues(o.ProviderName).Inc()
				continue
			}

			out, err := o.Pipeline.TransformMany(ctx, row)
			if err != nil {
				loopErr = err
				cancel()
				break
			}
			for _, r := range out {
				pending = append(pending, r)
				if o.Options.Limit > 0 && m.WriteCount+int64(len(pending)) >= o.Options.Limit {
					limitReached = true
					break
				}
			}

			if len(pending) >= o.Options.BatchSize || limitReached {
				if err := flush(); err != nil {
					loopErr = err
					cancel()
					break
				}
			}
			if limitReached {
				cancel()
				break
			}
		}
	}
	if loopErr != nil {
		return loopErr
	}
	if err := flush(); err != nil {
		return err
	}

	if readErr := <-errc; readErr != nil && !limitReached {
		return readErr
	}
	return nil
}

// runHook shells out to cmdline when non-empty. A hook's stdout/stderr
// are inherited so users see its output inline with the run's own log.
func (o *Orchestrator) runHook(ctx context.Context, cmdline string) error {
	if cmdline == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func writeMetricsFile(path string, m *types.ExportMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return types.NewFailure(types.KindPermanentIO, "could not create metrics file", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// sampler applies a per-row Bernoulli keep decision, seeded when the
// caller supplied a seed so repeated runs are reproducible.
type sampler struct {
	rate float64
	rng  *rand.Rand
}

func newSampler(rate float64, hasSeed bool, seed int64) *sampler {
	if rate >= 1 {
		return &sampler{rate: 1}
	}
	var rng *rand.Rand
	if hasSeed {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &sampler{rate: rate, rng: rng}
}

func (s *sampler) keep() bool {
	if s.rate >= 1 {
		return true
	}
	if s.rate <= 0 {
		return false
	}
	return s.rng.Float64() < s.rate
}
