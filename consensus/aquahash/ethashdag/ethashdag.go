// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

// Package ethashdag generates, stores and hashes with the aquahash
// verification caches and mining datasets.
package ethashdag

import (
	"context"
	"sync"
	"sync/atomic"

	"gitlab.com/aquachain/aquahash/common/log"
)

// EthashDAG manages the caches and datasets of recent epochs for an engine.
type EthashDAG struct {
	config *Config

	caches   *lru // In memory caches to avoid regenerating too often
	datasets *lru // In memory datasets to avoid regenerating too often

	cacheStore   Store // nil if caches are not persisted
	datasetStore Store // nil if datasets are not persisted

	// newest handles, read without taking the lru locks
	latestLight atomic.Pointer[Light]
	latestFull  atomic.Pointer[Full]

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex     // guards wg against Close
	wg     sync.WaitGroup // background future generation
}

// New creates a DAG manager for config. The config is not copied.
func New(config *Config) (*EthashDAG, error) {
	if config.PowMode > ModeTest {
		return nil, ErrInvalidParams
	}
	if err := config.params().Validate(); err != nil {
		return nil, err
	}
	if config.CachesInMem <= 0 {
		log.Warn("One aquahash cache must always be in memory", "requested", config.CachesInMem)
		config.CachesInMem = 1
	}
	d := &EthashDAG{
		config:   config,
		caches:   newlru(KindCache, config.CachesInMem, newLight),
		datasets: newlru(KindDataset, config.DatasetsInMem, newFull),
	}
	switch {
	case config.Store != nil:
		d.cacheStore, d.datasetStore = config.Store, config.Store
	default:
		if config.CacheDir != "" && config.CachesOnDisk > 0 {
			log.Info("Disk storage enabled for aquahash caches", "dir", config.CacheDir, "count", config.CachesOnDisk)
			d.cacheStore = NewDumpStore(config.CacheDir)
		}
		if config.DatasetDir != "" && config.DatasetsOnDisk > 0 {
			log.Info("Disk storage enabled for aquahash DAGs", "dir", config.DatasetDir, "count", config.DatasetsOnDisk)
			d.datasetStore = NewDumpStore(config.DatasetDir)
		}
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Config returns the configuration the manager was created with.
func (d *EthashDAG) Config() *Config { return d.config }

// EpochOf returns the epoch of block under the configured parameters.
func (d *EthashDAG) EpochOf(block uint64) uint64 {
	return block / d.config.params().EpochLength
}

// Light tries to retrieve a verification cache for the specified block number
// by first checking against a list of in-memory caches, then against caches
// stored on disk, and finally generating one if none can be found.
func (d *EthashDAG) Light(block uint64) *Light {
	epoch := d.EpochOf(block)
	if c := d.latestLight.Load(); c != nil && c.epoch == epoch {
		return c
	}
	c := d.light(epoch)
	publish(&d.latestLight, c, func(l *Light) uint64 { return l.epoch })
	return c
}

func (d *EthashDAG) light(epoch uint64) *Light {
	item, future := d.caches.get(epoch)
	c := item.(*Light)

	// Wait for generation finish.
	c.generate(d.config, d.cacheStore, d.config.CachesOnDisk)

	// If we need a new future cache, now's a good time to regenerate it.
	if future != nil {
		d.background(func() {
			future.(*Light).generate(d.config, d.cacheStore, d.config.CachesOnDisk)
		})
	}
	return c
}

// peekLight returns the generated cache for epoch without scheduling a
// future cache after it.
func (d *EthashDAG) peekLight(epoch uint64) *Light {
	c := d.caches.peek(epoch).(*Light)
	c.generate(d.config, d.cacheStore, d.config.CachesOnDisk)
	return c
}

// Full tries to retrieve a mining dataset for the specified block number
// by first checking against a list of in-memory datasets, then against DAGs
// stored on disk, and finally generating one if none can be found.
func (d *EthashDAG) Full(block uint64) (*Full, error) {
	epoch := d.EpochOf(block)
	if f := d.latestFull.Load(); f != nil && f.epoch == epoch {
		return f, nil
	}
	item, future := d.datasets.get(epoch)
	f := item.(*Full)

	if err := f.generate(d.ctx, d.config, d.Light(block), d.datasetStore, d.config.DatasetsOnDisk); err != nil {
		return nil, err
	}
	if future != nil {
		d.background(func() {
			future.(*Full).generate(d.ctx, d.config, d.peekLight(epoch+1), d.datasetStore, d.config.DatasetsOnDisk)
		})
	}
	publish(&d.latestFull, f, func(f *Full) uint64 { return f.epoch })
	return f, nil
}

func (d *EthashDAG) background(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx.Err() != nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

// Close abandons background generation and waits for it to stop.
func (d *EthashDAG) Close() error {
	d.mu.Lock()
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

// publish swaps in h if it is at least as new as the current handle.
func publish[T any](p *atomic.Pointer[T], h *T, epoch func(*T) uint64) {
	for {
		cur := p.Load()
		if cur != nil && epoch(cur) > epoch(h) {
			return
		}
		if p.CompareAndSwap(cur, h) {
			return
		}
	}
}

// MakeCache generates a new aquahash cache and optionally stores it to disk.
func MakeCache(block uint64, dir string) *Light {
	cfg := &Config{CacheDir: dir, CachesOnDisk: 0}
	c := newLight(EpochOf(block)).(*Light)
	var store Store
	if dir != "" {
		store = NewDumpStore(dir)
	}
	c.generate(cfg, store, cfg.CachesOnDisk)
	return c
}

// MakeDataset generates a new aquahash dataset and optionally stores it to disk.
func MakeDataset(ctx context.Context, block uint64, dir string) (*Full, error) {
	cfg := &Config{DatasetDir: dir}
	d := newFull(EpochOf(block)).(*Full)
	var store Store
	if dir != "" {
		store = NewDumpStore(dir)
	}
	if err := d.generate(ctx, cfg, MakeCache(block, ""), store, 0); err != nil {
		return nil, err
	}
	return d, nil
}
