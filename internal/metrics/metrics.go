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

// Package metrics holds the run's prometheus counters/histograms,
// labelled by provider name, alongside the latency-bucket scheme shared
// across them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets is the bucket scheme shared by every duration
// histogram in this package.
var LatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// ProviderLabels labels every counter/histogram by the reader or
// writer provider name that produced the measurement.
var ProviderLabels = []string{"provider"}

var (
	// RowsRead counts rows pulled from the reader, before sampling.
	RowsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtpipe_rows_read_total",
		Help: "the number of rows read from the source",
	}, ProviderLabels)

	// RowsWritten counts rows committed to the writer.
	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtpipe_rows_written_total",
		Help: "the number of rows written to the sink",
	}, ProviderLabels)

	// RowsSampledOut counts rows dropped by the sampler before they ever
	// reach the transformer pipeline.
	RowsSampledOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtpipe_rows_sampled_out_total",
		Help: "the number of rows dropped by the sampler",
	}, ProviderLabels)

	// BatchWriteDurations times each retry-wrapped WriteBatch call.
	BatchWriteDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dtpipe_batch_write_duration_seconds",
		Help:    "the length of time it took to write one batch, including retries",
		Buckets: LatencyBuckets,
	}, ProviderLabels)

	// BatchWriteErrors counts batches that failed even after retries.
	BatchWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtpipe_batch_write_errors_total",
		Help: "the number of batches that failed to write after the retry policy was exhausted",
	}, ProviderLabels)

	// TransformerRowsProcessed counts rows seen by a transformer stage.
	TransformerRowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtpipe_transformer_rows_processed_total",
		Help: "the number of rows seen by a transformer stage",
	}, []string{"transformer"})
)
