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

// Package fake implements the reference fake transformer: COLUMN:category.kind
// mappings that replace a value with a deterministic pseudo-random fake
// value keyed by (seed, row_index, column). No faker library is present
// anywhere in the pack, so generation leans on math/rand the same way
// the teacher's chaos wrappers do, seeded deterministically per value
// instead of from the process clock.
package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/nicopon/dtpipe/internal/types"
)

// Mapping is one COLUMN:category.kind rule.
type Mapping struct {
	Column   string
	Category string
	Kind     string
}

// Transformer replaces configured columns with deterministic fakes.
type Transformer struct {
	Mappings []Mapping
	Seed     int64

	targets  map[int]Mapping
	rowIndex int64
}

// New builds a fake Transformer over mappings, seeded by seed.
func New(mappings []Mapping, seed int64) *Transformer {
	return &Transformer{Mappings: mappings, Seed: seed}
}

// Name identifies this stage in ExportMetrics.
func (t *Transformer) Name() string { return "fake" }

// Kind reports KindMap.
func (t *Transformer) Kind() types.TransformerKind { return types.KindMap }

// Initialize resolves each column name to its position. The column list
// is unchanged.
func (t *Transformer) Initialize(ctx context.Context, columnsIn []types.ColumnDescriptor) ([]types.ColumnDescriptor, error) {
	byName := make(map[string]int, len(columnsIn))
	for i, c := range columnsIn {
		byName[c.Name] = i
	}
	t.targets = make(map[int]Mapping, len(t.Mappings))
	for _, m := range t.Mappings {
		idx, ok := byName[m.Column]
		if !ok {
			return nil, types.NewFailure(types.KindConfig,
				fmt.Sprintf("fake transformer: column %q not found", m.Column), nil)
		}
		t.targets[idx] = m
	}
	t.rowIndex = 0
	return columnsIn, nil
}

// Transform replaces every configured position with a fake value,
// advancing the row index counter the hash is keyed from.
func (t *Transformer) Transform(ctx context.Context, row types.Row) (types.Row, error) {
	out := row.Clone()
	for idx, m := range t.targets {
		if idx >= len(out) {
			continue
		}
		out[idx] = t.generate(m, t.rowIndex)
	}
	t.rowIndex++
	return out, nil
}

// TransformMany is unused: Kind() == KindMap.
func (t *Transformer) TransformMany(ctx context.Context, row types.Row) ([]types.Row, error) {
	r, err := t.Transform(ctx, row)
	if err != nil || r == nil {
		return nil, err
	}
	return []types.Row{r}, nil
}

// Close releases no resources.
func (t *Transformer) Close() error { return nil }

// generate derives a value deterministically from (seed, rowIndex,
// column), so that the same seed always yields the same fake data.
func (t *Transformer) generate(m Mapping, rowIndex int64) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%s", t.Seed, rowIndex, m.Column)
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	switch strings.ToLower(m.Category) {
	case "name":
		return pick(rng, m.Kind, nameFirst, nameLast, nameFull)
	case "internet":
		return internetValue(rng, m.Kind)
	case "address":
		return pick(rng, m.Kind, addressCity, addressCountry, addressCity)
	case "lorem":
		return loremWords[rng.Intn(len(loremWords))]
	case "number":
		return fmt.Sprintf("%d", rng.Intn(1_000_000))
	default:
		return fmt.Sprintf("fake-%08x", rng.Uint32())
	}
}

func pick(rng *rand.Rand, kind string, first, last, full []string) string {
	switch strings.ToLower(kind) {
	case "first":
		return first[rng.Intn(len(first))]
	case "last":
		return last[rng.Intn(len(last))]
	case "city":
		return first[rng.Intn(len(first))]
	case "country":
		return last[rng.Intn(len(last))]
	default:
		return full[rng.Intn(len(full))]
	}
}

func internetValue(rng *rand.Rand, kind string) string {
	user := nameFirst[rng.Intn(len(nameFirst))]
	switch strings.ToLower(kind) {
	case "username":
		return strings.ToLower(user) + fmt.Sprintf("%d", rng.Intn(100))
	default: // "email"
		return fmt.Sprintf("%s.%d@example.com", strings.ToLower(user), rng.Intn(1000))
	}
}

var (
	nameFirst      = []string{"Ada", "Grace", "Alan", "Barbara", "Linus", "Margaret", "Donald", "Katherine"}
	nameLast       = []string{"Lovelace", "Hopper", "Turing", "Liskov", "Torvalds", "Hamilton", "Knuth", "Johnson"}
	nameFull       = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Barbara Liskov"}
	addressCity    = []string{"Paris", "Berlin", "Austin", "Kyoto", "Lagos", "Lima"}
	addressCountry = []string{"France", "Germany", "United States", "Japan", "Nigeria", "Peru"}
	loremWords     = []string{"ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing"}
)
