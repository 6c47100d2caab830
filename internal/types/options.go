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

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// PipelineOptions is the configuration record recognized by the core.
// A hosting CLI is responsible for populating it from flags/YAML; the
// core only binds flags and validates.
type PipelineOptions struct {
	BatchSize     int
	Limit         int64
	MaxRetries    int
	RetryDelayMS  int
	SamplingRate  float64
	SamplingSeed  int64
	HasSeed       bool
	StrictSchema  bool
	NoValidation  bool
	AutoMigrate   bool
	DryRunCount   int
	PreExec       string
	PostExec      string
	OnErrorExec   string
	FinallyExec   string
	NoStats       bool
	MetricsPath   string
}

// Bind registers flags for every recognized option, mirroring
// server.Config.Bind's pattern of one flags.XxxVar call per field.
func (o *PipelineOptions) Bind(flags *pflag.FlagSet) {
	flags.IntVar(&o.BatchSize, "batch-size", 50_000,
		"number of rows requested per batch")
	flags.Int64Var(&o.Limit, "limit", 0,
		"stop after writing this many rows (0 = unlimited)")
	flags.IntVar(&o.MaxRetries, "max-retries", 3,
		"maximum number of retries for a transient write failure")
	flags.IntVar(&o.RetryDelayMS, "retry-delay-ms", 1000,
		"initial retry delay in milliseconds, doubled on each attempt")
	flags.Float64Var(&o.SamplingRate, "sampling-rate", 1.0,
		"per-row Bernoulli sampling rate applied before the transformer chain")
	flags.Int64Var(&o.SamplingSeed, "sampling-seed", 0,
		"seed for the sampling RNG; unset means a time-derived seed")
	flags.BoolVar(&o.StrictSchema, "strict-schema", false,
		"abort the run if static schema validation reports any error")
	flags.BoolVar(&o.NoValidation, "no-schema-validation", false,
		"skip per-value schema validation on the hot path")
	flags.BoolVar(&o.AutoMigrate, "auto-migrate", false,
		"add columns missing from an existing target automatically")
	flags.IntVar(&o.DryRunCount, "dry-run-count", 0,
		"print this many post-transform rows and exit without writing")
	flags.StringVar(&o.PreExec, "pre-exec", "", "command run before the pipeline opens its reader")
	flags.StringVar(&o.PostExec, "post-exec", "", "command run after a successful completion")
	flags.StringVar(&o.OnErrorExec, "on-error-exec", "", "command run when the run aborts with an error")
	flags.StringVar(&o.FinallyExec, "finally-exec", "", "command always run at the end of the run")
	flags.BoolVar(&o.NoStats, "no-stats", false, "suppress progress statistics output")
	flags.StringVar(&o.MetricsPath, "metrics-path", "", "write ExportMetrics as JSON to this path on completion")
}

// SeedSet reports whether SamplingSeed was explicitly provided; callers
// that bind through pflag should set HasSeed themselves once the flag
// set has been parsed and Changed("sampling-seed") is true.
func (o *PipelineOptions) SeedSet() bool { return o.HasSeed }

// Preflight validates the option record, mirroring
// server.Config.Preflight's style of one guard clause per invariant.
func (o *PipelineOptions) Preflight() error {
	if o.BatchSize <= 0 {
		return errors.New("batch-size must be positive")
	}
	if o.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	if o.MaxRetries < 0 {
		return errors.New("max-retries must not be negative")
	}
	if o.RetryDelayMS < 0 {
		return errors.New("retry-delay-ms must not be negative")
	}
	if o.SamplingRate < 0 || o.SamplingRate > 1 {
		return errors.New("sampling-rate must be within [0, 1]")
	}
	if o.DryRunCount < 0 {
		return errors.New("dry-run-count must not be negative")
	}
	if o.StrictSchema && o.NoValidation {
		return errors.New("strict-schema and no-schema-validation are mutually exclusive")
	}
	return nil
}

// OptionSet is implemented by every provider-specific option record
// registered with the OptionsRegistry. Prefix seeds CLI flag names
// (e.g. "ora" -> "--ora-user"); DisplayName is shown in help text.
type OptionSet interface {
	Prefix() string
	DisplayName() string
}
