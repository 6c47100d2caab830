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

package bootstrap

import (
	"github.com/nicopon/dtpipe/internal/provideropts"
	"github.com/nicopon/dtpipe/internal/types"
)

// Config bundles everything Start needs to resolve a source and a
// sink and build a running Orchestrator: the pipeline-wide options,
// the two connection strings the registry resolves, the per-provider
// option records the descriptors read from, the caller's transformer
// chain, and an optional pre-existing target schema.
type Config struct {
	Options *types.PipelineOptions

	Source string
	Sink   string

	SQLOptions      provideropts.SQLOptions
	PostgresOptions provideropts.PostgresOptions

	Stages []types.Transformer

	// Target describes a pre-existing sink schema. Nil means the sink
	// table does not exist yet and must be created from scratch.
	Target *types.TargetSchema
}
