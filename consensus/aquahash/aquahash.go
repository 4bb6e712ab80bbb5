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

// Package aquahash implements the aquahash proof-of-work engine.
package aquahash

import (
	"sync"

	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

// Config are the configuration parameters of the aquahash.
type Config = ethashdag.Config

const (
	ModeNormal = ethashdag.ModeNormal
	ModeShared = ethashdag.ModeShared
	ModeTest   = ethashdag.ModeTest
)

// Aquahash is a proof-of-work engine implementing the aquahash algorithm.
type Aquahash struct {
	config *Config

	ethashdag *ethashdag.EthashDAG // nil when shared is set

	// Mining related fields
	threads  int           // Number of threads to mine on if mining
	update   chan struct{} // Notification channel to update mining parameters
	hashrate meter         // Measured search rate

	// The fields below are hooks for testing
	shared *Aquahash // Shared PoW verifier to avoid cache regeneration

	lock sync.Mutex // Ensures thread safety for the mining fields
}

func (aquahash *Aquahash) Name() string {
	return "aquahash"
}

// New creates a full sized aquahash PoW scheme. ModeShared returns a handle
// on the process wide instance and ignores the rest of config.
func New(config *Config) (*Aquahash, error) {
	if config.PowMode == ModeShared {
		return NewSharedTesting(), nil
	}
	dag, err := ethashdag.New(config)
	if err != nil {
		return nil, err
	}
	log.Debug("Created aquahash engine", "mode", config.PowMode, "caches", config.CachesInMem, "datasets", config.DatasetsInMem)
	return &Aquahash{
		config:    config,
		ethashdag: dag,
		update:    make(chan struct{}),
	}, nil
}

func mustNew(config *Config) *Aquahash {
	aquahash, err := New(config)
	if err != nil {
		panic(err)
	}
	return aquahash
}

// NewTester creates a small sized aquahash PoW scheme useful only for testing
// purposes.
func NewTester() *Aquahash {
	return mustNew(&Config{CachesInMem: 1, PowMode: ModeTest})
}

var (
	sharedOnce     sync.Once
	sharedAquahash *Aquahash // full instance shared between multiple callers
)

// sharedEngine builds the process wide instance on first use.
func sharedEngine() *Aquahash {
	sharedOnce.Do(func() {
		sharedAquahash = mustNew(&Config{CachesInMem: 3, DatasetsInMem: 1, PowMode: ModeNormal})
	})
	return sharedAquahash
}

// NewSharedTesting creates a full sized aquahash PoW shared between all requesters running
// in the same process.
func NewSharedTesting() *Aquahash {
	shared := sharedEngine()
	return &Aquahash{config: shared.config, shared: shared, update: make(chan struct{})}
}

// dag returns the cache and dataset manager, following shared instances.
func (aquahash *Aquahash) dag() *ethashdag.EthashDAG {
	if aquahash.shared != nil {
		return aquahash.shared.ethashdag
	}
	return aquahash.ethashdag
}

// Close abandons background dataset generation. Shared instances stay open.
func (aquahash *Aquahash) Close() error {
	if aquahash.shared != nil {
		return nil
	}
	return aquahash.ethashdag.Close()
}

// Threads returns the number of mining threads currently enabled. This doesn't
// necessarily mean that mining is running!
func (aquahash *Aquahash) Threads() int {
	if aquahash.shared != nil {
		return aquahash.shared.Threads()
	}
	aquahash.lock.Lock()
	defer aquahash.lock.Unlock()

	return aquahash.threads
}

// SetThreads updates the number of mining threads currently enabled. Calling
// this method does not start mining, only sets the thread count. If zero is
// specified, the miner will use all cores of the machine. Setting a thread
// count below zero is allowed and will cause the miner to idle, without any
// work being done.
func (aquahash *Aquahash) SetThreads(threads int) {
	aquahash.lock.Lock()
	defer aquahash.lock.Unlock()

	// If we're running a shared PoW, set the thread count on that instead
	if aquahash.shared != nil {
		aquahash.shared.SetThreads(threads)
		return
	}
	// Update the threads and ping any running search to pull in any changes
	aquahash.threads = threads
	select {
	case aquahash.update <- struct{}{}:
	default:
	}
}

// Hashrate returns the measured rate of the search invocations per second
// over the last minute.
func (aquahash *Aquahash) Hashrate() float64 {
	if aquahash.shared != nil {
		return aquahash.shared.Hashrate()
	}
	return aquahash.hashrate.rate()
}

// SeedHash is the seed to use for generating a verification cache and the mining
// dataset.
func SeedHash(block uint64) []byte {
	return ethashdag.SeedHash(ethashdag.EpochOf(block))
}

// ComputeLight hashes with the verification cache of block's epoch.
func (aquahash *Aquahash) ComputeLight(block uint64, hash common.Hash, nonce uint64) (mix, result common.Hash) {
	return aquahash.dag().Light(block).Compute(hash, nonce)
}

// ComputeFull hashes with the mining dataset of block's epoch, generating it
// first if needed.
func (aquahash *Aquahash) ComputeFull(block uint64, hash common.Hash, nonce uint64) (mix, result common.Hash, err error) {
	full, err := aquahash.dag().Full(block)
	if err != nil {
		return mix, result, err
	}
	mix, result = full.Compute(hash, nonce)
	return mix, result, nil
}
