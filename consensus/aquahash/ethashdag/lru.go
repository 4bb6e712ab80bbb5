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
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"gitlab.com/aquachain/aquahash/common/log"
)

// lru tracks caches or datasets by their last use time, keeping at most N of them.
type lru struct {
	what Kind
	new  func(epoch uint64) interface{}
	mu   sync.Mutex
	// Items are kept in a LRU cache, but there is a special case:
	// We always keep an item for (highest seen epoch) + 1 as the 'future item'.
	cache      *simplelru.LRU
	future     uint64
	futureItem interface{}
}

// newlru create a new least-recently-used cache for either the verification caches
// or the mining datasets.
func newlru(what Kind, maxItems int, new func(epoch uint64) interface{}) *lru {
	if maxItems <= 0 {
		maxItems = 1
	}
	cache, _ := simplelru.NewLRU(maxItems, func(key, value interface{}) {
		log.Trace("Evicted aquahash "+string(what), "epoch", key)
	})
	return &lru{what: what, new: new, cache: cache}
}

// get retrieves or creates an item for the given epoch. The first return value is always
// non-nil. The second return value is non-nil if lru thinks that an item will be useful in
// the near future.
func (lru *lru) get(epoch uint64) (item, future interface{}) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	// Get or create the item for the requested epoch.
	item, ok := lru.cache.Get(epoch)
	if !ok {
		if lru.future > 0 && lru.future == epoch {
			item = lru.futureItem
		} else {
			log.Trace("Requiring new aquahash "+string(lru.what), "epoch", epoch)
			item = lru.new(epoch)
		}
		lru.cache.Add(epoch, item)
	}
	// Update the 'future item' if epoch is larger than previously seen.
	if epoch < math.MaxUint64-1 && lru.future < epoch+1 {
		log.Trace("Requiring new future aquahash "+string(lru.what), "epoch", epoch+1)
		future = lru.new(epoch + 1)
		lru.future = epoch + 1
		lru.futureItem = future
	}
	return item, future
}

// peek returns the item for epoch without touching recency or the future
// item. An epoch that is neither held nor the future one gets a fresh item
// that is not retained.
func (lru *lru) peek(epoch uint64) interface{} {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if item, ok := lru.cache.Peek(epoch); ok {
		return item
	}
	if lru.futureItem != nil && lru.future == epoch {
		return lru.futureItem
	}
	return lru.new(epoch)
}

// len reports the number of items held, excluding the future item.
func (lru *lru) len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.cache.Len()
}
