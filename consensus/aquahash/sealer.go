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

package aquahash

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math"
	"math/big"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

var errNoMiningThreads = errors.New("mining threads disabled")

// Result is a found proof-of-work solution.
type Result struct {
	Nonce     uint64
	MixDigest common.Hash
	Digest    common.Hash
}

// Search looks for a nonce whose result digest is within the difficulty
// boundary, using the full dataset of block's epoch on Threads() goroutines.
// Each goroutine walks its own nonce stream; the first hit stops the rest.
// Changing the thread count restarts the workers.
func (aquahash *Aquahash) Search(ctx context.Context, block uint64, hash common.Hash, difficulty *big.Int) (*Result, error) {
	if difficulty.Sign() <= 0 {
		return nil, errInvalidDifficulty
	}
	full, err := aquahash.dag().Full(block)
	if err != nil {
		return nil, err
	}
	target := Target(difficulty)
	update := aquahash.update
	if aquahash.shared != nil {
		update = aquahash.shared.update
	}
	for {
		threads := aquahash.Threads()
		if threads == 0 {
			threads = runtime.NumCPU()
		}
		if threads < 0 {
			return nil, errNoMiningThreads
		}
		seed, err := crand.Int(crand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, err
		}
		start := rand.New(rand.NewSource(seed.Int64())).Uint64()

		var (
			pend  sync.WaitGroup
			found = make(chan *Result, 1)
		)
		workCtx, cancel := context.WithCancel(ctx)
		for i := 0; i < threads; i++ {
			pend.Add(1)
			go func(id int) {
				defer pend.Done()
				aquahash.mine(workCtx, full, id, start+uint64(id), uint64(threads), hash, target, found)
			}(i)
		}
		var result *Result
		restart := false
		select {
		case result = <-found:
		case <-ctx.Done():
		case <-update:
			log.Debug("Restarting aquahash search with new thread count")
			restart = true
		}
		cancel()
		pend.Wait()

		if result == nil {
			select {
			case result = <-found:
			default:
			}
		}
		switch {
		case result != nil:
			return result, nil
		case restart:
			continue
		default:
			return nil, ctx.Err()
		}
	}
}

// mine is the actual proof-of-work miner that searches for a nonce starting from
// seed that results in correct final block difficulty, stepping by stride.
func (aquahash *Aquahash) mine(ctx context.Context, full *ethashdag.Full, id int, seed, stride uint64, hash common.Hash, target *big.Int, found chan<- *Result) {
	var (
		attempts = uint64(0)
		nonce    = seed
	)
	logger := log.New("miner", id)
	logger.Trace("Started aquahash search for new nonces", "seed", seed)
	defer func() {
		aquahash.hashrate.mark(attempts)
	}()
	for {
		// We don't have to update hash rate on every nonce, so update after 2^X nonces
		if attempts%(1<<12) == 0 && attempts > 0 {
			aquahash.hashrate.mark(attempts)
			attempts = 0
			if ctx.Err() != nil {
				logger.Trace("Aquahash nonce search aborted", "attempts", nonce-seed)
				return
			}
		}
		attempts++
		// Compute the PoW value of this nonce
		digest, result := full.Compute(hash, nonce)
		if MeetsTarget(result, target) {
			select {
			case found <- &Result{Nonce: nonce, MixDigest: digest, Digest: result}:
				logger.Trace("Aquahash nonce found and reported", "attempts", (nonce-seed)/stride, "nonce", nonce)
			default:
				logger.Trace("Aquahash nonce found but discarded", "attempts", (nonce-seed)/stride, "nonce", nonce)
			}
			return
		}
		nonce += stride
	}
}

// meter counts hashes over a sliding one minute window.
type meter struct {
	mu    sync.Mutex
	count uint64
	start time.Time
}

func (m *meter) mark(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.start.IsZero() || time.Since(m.start) > time.Minute {
		m.start, m.count = time.Now(), 0
	}
	m.count += n
}

func (m *meter) rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := time.Since(m.start).Seconds()
	if m.start.IsZero() || elapsed == 0 {
		return 0
	}
	return float64(m.count) / elapsed
}
