// Copyright (C) 2024 The go-perlin Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package perlin

import (
	"sigs.k8s.io/yaml"

	"github.com/go-perlin/perlin/indexing"
	"github.com/go-perlin/perlin/page"
)

// Default tuning values, used whenever the corresponding Config field
// is left at its zero value.
const (
	DefaultChunkSize             = page.DefaultSize
	DefaultDocsPerChunk          = indexing.DefaultBatchSize
	DefaultSortWorkers           = indexing.DefaultSorters
	DefaultMergeChannelCapacity  = 2
	DefaultSorterChannelCapacity = 1
)

// Config tunes an Index's storage layout and concurrent indexing
// pipeline. The zero value is valid and selects the package defaults,
// following the same zero-means-default convention the indexing
// package uses for its batch sizes and worker counts.
type Config struct {
	// ChunkSize is the fixed byte size of one posting-store page.
	// Consulted by OpenRAM and OpenFile, which build the backing
	// page.Store from it; ignored by Open, which takes an
	// already-constructed page.Store whose size is its own.
	ChunkSize int
	// DocsPerChunk is the number of documents tokenized into one
	// sort/merge batch during a concurrent Add.
	DocsPerChunk int
	// SortWorkers is the number of concurrent sorter goroutines a
	// concurrent Add runs. 1 behaves like the sequential path but
	// still pays the pipeline's channel overhead; use Add for
	// genuinely single-threaded indexing.
	SortWorkers int
	// MergeChannelCapacity sizes the channel sorters hand sorted
	// batches to the merger through.
	MergeChannelCapacity int
	// SorterChannelCapacity sizes the channel batches are queued to
	// sorters through.
	SorterChannelCapacity int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.DocsPerChunk <= 0 {
		c.DocsPerChunk = DefaultDocsPerChunk
	}
	if c.SortWorkers <= 0 {
		c.SortWorkers = DefaultSortWorkers
	}
	if c.MergeChannelCapacity <= 0 {
		c.MergeChannelCapacity = DefaultMergeChannelCapacity
	}
	if c.SorterChannelCapacity <= 0 {
		c.SorterChannelCapacity = DefaultSorterChannelCapacity
	}
	return c
}

func (c Config) indexingConfig() indexing.Config {
	return indexing.Config{
		Sorters:            c.SortWorkers,
		BatchSize:          c.DocsPerChunk,
		BatchQueueCapacity: c.SorterChannelCapacity,
		MergeQueueCapacity: c.MergeChannelCapacity,
	}
}

// LoadConfigYAML parses a YAML document into a Config, for embedders
// that want to externalize indexing parameters instead of
// constructing Config literally. It is a thin convenience on top of
// Config, not the primary way to configure an Index.
func LoadConfigYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ReadError{Cause: err}
	}
	return cfg, nil
}
