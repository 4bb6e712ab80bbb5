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

package ethashdag

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pbnjay/memory"
	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
)

// totalMemory is swapped in tests.
var totalMemory = memory.TotalMemory

// Full is a mining dataset for one epoch together with the cache it was
// expanded from.
type Full struct {
	epoch   uint64
	light   *Light
	dataset []uint32
	once    sync.Once
	done    atomic.Bool
	err     error
}

func newFull(epoch uint64) interface{} {
	return &Full{epoch: epoch}
}

// generate ensures that the dataset content is generated before use. A
// cancelled ctx leaves the handle failed; it is never retried.
func (d *Full) generate(ctx context.Context, cfg *Config, light *Light, store Store, limit int) error {
	d.once.Do(func() {
		// Mark the dataset generated after we're done, failed or not.
		defer d.done.Store(true)

		start := time.Now()
		d.light = light
		size := cfg.datasetBytes(d.epoch)
		logger := log.New("epoch", d.epoch)

		if total := totalMemory(); total != 0 && size > total {
			d.err = fmt.Errorf("%w: dataset needs %d bytes, system has %d", ErrResourceExhaustion, size, total)
			return
		}
		d.dataset = make([]uint32, size/4)

		key := cfg.storeKey(KindDataset, d.epoch, light.seed[:])
		if store != nil {
			err := loadWords(store, key, d.dataset)
			recordLookup(KindDataset, err)
			if err == nil {
				logger.Debug("Loaded old aquahash dataset from disk")
				return
			}
			logger.Debug("Failed to load old aquahash dataset", "err", err)
		}
		if err := generateDataset(ctx, d.dataset, d.epoch, light.cache, light.params.DatasetParents); err != nil {
			d.dataset = nil
			d.err = err
			return
		}
		observeGeneration(KindDataset, start)

		if store == nil {
			return
		}
		if err := saveWords(store, key, d.dataset); err != nil {
			logger.Error("Failed to store aquahash dataset", "err", err)
		}
		pruneStore(store, cfg, KindDataset, d.epoch, limit)
	})
	return d.err
}

// Generated reports whether generation has finished, successfully or not.
func (d *Full) Generated() bool { return d.done.Load() }

func (d *Full) Epoch() uint64 { return d.epoch }

// Light returns the verification cache the dataset was expanded from.
func (d *Full) Light() *Light { return d.light }

// Compute runs hashimoto reading items straight from the dataset.
func (d *Full) Compute(hash common.Hash, nonce uint64) (mix, result common.Hash) {
	fullHashes.Inc()
	digest, res := hashimotoFull(d.dataset, hash[:], nonce, d.light.params.LoopAccesses)
	return common.BytesToHash(digest), common.BytesToHash(res)
}

// ComputeFull is Full.Compute guarded by an epoch check on block.
func ComputeFull(block uint64, d *Full, hash common.Hash, nonce uint64) (mix, result common.Hash, err error) {
	if block/d.light.params.EpochLength != d.epoch {
		return mix, result, ErrEpochMismatch
	}
	mix, result = d.Compute(hash, nonce)
	return mix, result, nil
}
