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
	"sync"
	"time"

	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
)

// Light is a verification cache for one epoch. It is generated once and
// read only afterwards, so any number of goroutines may hash with it.
type Light struct {
	epoch       uint64
	seed        [32]byte
	params      *Params
	datasetSize uint64
	cache       []uint32
	once        sync.Once
}

func newLight(epoch uint64) interface{} {
	return &Light{epoch: epoch}
}

// generate ensures that the cache content is generated before use.
func (c *Light) generate(cfg *Config, store Store, limit int) {
	c.once.Do(func() {
		start := time.Now()
		c.params = cfg.params()
		c.datasetSize = cfg.datasetBytes(c.epoch)
		key := cfg.storeKey(KindCache, c.epoch, SeedHash(c.epoch))
		c.seed = key.Seed
		c.cache = make([]uint32, cfg.cacheBytes(c.epoch)/4)

		// If we don't store anything on disk, generate and return.
		if store == nil {
			generateCache(c.cache, c.epoch, c.seed[:], c.params.CacheRounds)
			observeGeneration(KindCache, start)
			return
		}
		logger := log.New("epoch", c.epoch)

		err := loadWords(store, key, c.cache)
		recordLookup(KindCache, err)
		if err == nil {
			logger.Debug("Loaded old aquahash cache from disk")
			return
		}
		logger.Debug("Failed to load old aquahash cache", "err", err)

		generateCache(c.cache, c.epoch, c.seed[:], c.params.CacheRounds)
		observeGeneration(KindCache, start)

		if err := saveWords(store, key, c.cache); err != nil {
			logger.Error("Failed to store aquahash cache", "err", err)
		}
		pruneStore(store, cfg, KindCache, c.epoch, limit)
	})
}

func (c *Light) Epoch() uint64 { return c.epoch }

func (c *Light) Seed() common.Hash { return common.BytesToHash(c.seed[:]) }

// DatasetSize is the size in bytes of the dataset this cache expands to.
func (c *Light) DatasetSize() uint64 { return c.datasetSize }

// Compute runs hashimoto computing every dataset item on demand from the cache.
func (c *Light) Compute(hash common.Hash, nonce uint64) (mix, result common.Hash) {
	lightHashes.Inc()
	digest, res := hashimotoLight(c.datasetSize, c.cache, hash[:], nonce, c.params.DatasetParents, c.params.LoopAccesses)
	return common.BytesToHash(digest), common.BytesToHash(res)
}

// ComputeLight is Light.Compute guarded by an epoch check on block.
func ComputeLight(block uint64, c *Light, hash common.Hash, nonce uint64) (mix, result common.Hash, err error) {
	if block/c.params.EpochLength != c.epoch {
		return mix, result, ErrEpochMismatch
	}
	mix, result = c.Compute(hash, nonce)
	return mix, result, nil
}

// pruneStore removes entries more than limit epochs behind epoch. epoch is
// usually the future one, so limit older epochs survive next to it.
func pruneStore(store Store, cfg *Config, kind Kind, epoch uint64, limit int) {
	if limit <= 0 || epoch <= uint64(limit) {
		return
	}
	seed := make([]byte, seedBytes)
	keccak256 := makeHasher(seedBytes)
	for ep := uint64(0); ep < epoch-uint64(limit); ep++ {
		if ep > 0 {
			keccak256(seed, seed)
		}
		key := cfg.storeKey(kind, ep, seed)
		if store.Has(key) {
			log.Debug("Removing old aquahash "+string(kind), "epoch", ep)
			store.Delete(key)
		}
	}
}

// QuickHash recomputes the result digest from a claimed mix digest without a
// cache. It is only a filter: a matching value proves nothing about mix.
func QuickHash(hash common.Hash, nonce uint64, mix common.Hash) common.Hash {
	return common.BytesToHash(quickHash(hash[:], nonce, mix[:]))
}
