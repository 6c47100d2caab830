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

//go:build wireinject
// +build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"
	"github.com/nicopon/dtpipe/internal/orchestrator"
)

// Set collects the bootstrap-level providers for wire to chain. It is
// never compiled into the binary; wire_gen.go is the checked-in,
// hand-maintained equivalent of what `go run github.com/google/wire/cmd/wire`
// would emit from this injector.
var Set = wire.NewSet(
	ProvideRegistry,
	ProvideOptionsRegistry,
	ProvideReader,
	ProvideWriter,
	ProvidePipeline,
	orchestrator.New,
)

// Start resolves cfg's source and sink against the reference provider
// descriptors and returns a ready-to-run Orchestrator plus a cleanup
// closure that closes the Reader; the Writer's lifetime is managed by
// the Orchestrator.
func Start(ctx context.Context, cfg *Config) (*orchestrator.Orchestrator, func(), error) {
	panic(wire.Build(Set))
}
