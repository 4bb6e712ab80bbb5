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
	"math/big"
	"sync"
)

// sizeMemo remembers computed sizes for MainnetParams, keyed by epoch.
var (
	cacheSizes   sync.Map
	datasetSizes sync.Map
)

// CacheSize returns the size of the verification cache for an epoch under
// MainnetParams.
func CacheSize(epoch uint64) uint64 {
	if v, ok := cacheSizes.Load(epoch); ok {
		return v.(uint64)
	}
	size := calcSize(cacheInitBytes, cacheGrowthBytes, epoch, hashBytes)
	cacheSizes.Store(epoch, size)
	return size
}

// DatasetSize returns the size of the mining dataset for an epoch under
// MainnetParams.
func DatasetSize(epoch uint64) uint64 {
	if v, ok := datasetSizes.Load(epoch); ok {
		return v.(uint64)
	}
	size := calcSize(datasetInitBytes, datasetGrowthBytes, epoch, mixBytes)
	datasetSizes.Store(epoch, size)
	return size
}

// CacheSizeFor is CacheSize for an arbitrary parameter set.
func CacheSizeFor(p *Params, epoch uint64) uint64 {
	if *p == MainnetParams {
		return CacheSize(epoch)
	}
	return calcSize(p.CacheInitBytes, p.CacheGrowthBytes, epoch, hashBytes)
}

// DatasetSizeFor is DatasetSize for an arbitrary parameter set.
func DatasetSizeFor(p *Params, epoch uint64) uint64 {
	if *p == MainnetParams {
		return DatasetSize(epoch)
	}
	return calcSize(p.DatasetInitBytes, p.DatasetGrowthBytes, epoch, mixBytes)
}

// calcSize starts one row below init+growth*epoch and walks down two rows at
// a time until the row count is prime. The row count stays odd throughout.
func calcSize(init, growth, epoch, row uint64) uint64 {
	size := init + growth*epoch - row
	for size/row > 2 && !new(big.Int).SetUint64(size/row).ProbablyPrime(1) {
		size -= 2 * row
	}
	return size
}
