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
	"crypto/subtle"
	"runtime"
	"sync/atomic"
	"time"

	"gitlab.com/aquachain/aquahash/common/log"
	"golang.org/x/sync/errgroup"
)

const (
	datasetInitBytes   = 1 << 30 // Bytes in dataset at genesis
	datasetGrowthBytes = 1 << 23 // Dataset growth per epoch
	cacheInitBytes     = 1 << 24 // Bytes in cache at genesis
	cacheGrowthBytes   = 1 << 17 // Cache growth per epoch
	epochLength        = 30000   // Blocks per epoch
	mixBytes           = 128     // Width of mix
	hashBytes          = 64      // Hash length in bytes
	hashWords          = 16      // Number of 32 bit ints in a hash
	seedBytes          = 32      // Length of seeds and result digests
	datasetParents     = 256     // Number of parents of each dataset element
	cacheRounds        = 3       // Number of rounds in cache production
	loopAccesses       = 64      // Number of accesses in hashimoto loop

	mixWords = mixBytes / 4
)

// generateCache creates a verification cache of a given size for an input seed.
// The cache production process involves first sequentially filling up the
// memory with a Keccak-512 chain, then performing rounds passes of Sergio Demian
// Lerner's RandMemoHash algorithm from Strict Memory Hard Hashing Functions (2014).
//
// dest is filled with the little-endian words of the cache; its length times
// four must be a multiple of hashBytes.
func generateCache(dest []uint32, epoch uint64, seed []byte, rounds int) {
	logger := log.New("epoch", epoch)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)

		logFn := logger.Debug
		if elapsed > 3*time.Second {
			logFn = logger.Info
		}
		logFn("Generated aquahash verification cache", "elapsed", elapsed.Round(time.Millisecond))
	}()

	size := uint64(len(dest)) * 4
	cache := make([]byte, size)

	// Calculate the number of theoretical rows (we'll store in one buffer nonetheless)
	rows := int(size) / hashBytes
	if rows == 0 {
		return
	}

	// Start a monitoring goroutine to report progress on low end devices
	var progress uint32

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(3 * time.Second):
				logger.Info("Generating aquahash verification cache", "percentage", atomic.LoadUint32(&progress)*100/uint32(rows)/uint32(rounds+1), "elapsed", time.Since(start).Round(time.Second))
			}
		}
	}()
	// Create a hasher to reuse between invocations
	keccak512 := makeHasher(hashBytes)

	// Sequentially produce the initial dataset
	keccak512(cache, seed)
	for offset := uint64(hashBytes); offset < size; offset += hashBytes {
		keccak512(cache[offset:], cache[offset-hashBytes:offset])
		atomic.AddUint32(&progress, 1)
	}
	// Use a low-round version of randmemohash
	temp := make([]byte, hashBytes)

	for i := 0; i < rounds; i++ {
		for j := 0; j < rows; j++ {
			var (
				srcOff = ((j - 1 + rows) % rows) * hashBytes
				dstOff = j * hashBytes
				xorOff = (int(readUint32LE(cache, dstOff)) % rows) * hashBytes
			)
			subtle.XORBytes(temp, cache[srcOff:srcOff+hashBytes], cache[xorOff:xorOff+hashBytes])
			keccak512(cache[dstOff:], temp)

			atomic.AddUint32(&progress, 1)
		}
	}
	bytesToWords(dest, cache)
}

// fnv is an algorithm inspired by the FNV hash, which in some cases is used as
// a non-associative substitute for XOR. Note that we multiply the prime with
// the full 32-bit input, in contrast with the FNV-1 spec which multiplies the
// prime with one byte (octet) in turn.
func fnv(a, b uint32) uint32 {
	return a*0x01000193 ^ b
}

// fnvHash mixes in data into mix using the aquahash fnv method.
func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = mix[i]*0x01000193 ^ data[i]
	}
}

// generateDatasetItem combines data from 256 pseudorandomly selected cache nodes,
// and hashes that to compute a single dataset node. The result is written to
// dest as hashWords little-endian words.
func generateDatasetItem(dest []uint32, cache []uint32, index uint32, parents int, keccak512 hasher) {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(len(cache) / hashWords)

	// Initialize the mix
	mix := make([]byte, hashBytes)

	writeUint32LE(mix, 0, cache[(index%rows)*hashWords]^index)
	for i := 1; i < hashWords; i++ {
		writeUint32LE(mix, i*4, cache[(index%rows)*hashWords+uint32(i)])
	}
	keccak512(mix, mix)

	// Convert the mix to uint32s to avoid constant bit shifting
	intMix := make([]uint32, hashWords)
	bytesToWords(intMix, mix)

	// fnv it with a lot of random cache nodes based on index
	for i := uint32(0); i < uint32(parents); i++ {
		parent := fnv(index^i, intMix[i%hashWords]) % rows
		fnvHash(intMix, cache[parent*hashWords:])
	}
	// Flatten the uint32 mix into a binary one and return
	wordsToBytes(mix, intMix)
	keccak512(mix, mix)
	bytesToWords(dest[:hashWords], mix)
}

// generateDataset generates the entire aquahash dataset for mining. Items are
// split into one contiguous batch per CPU and each worker writes only its own
// slots. Cancelling ctx abandons the generation and returns ctx.Err().
func generateDataset(ctx context.Context, dest []uint32, epoch uint64, cache []uint32, parents int) error {
	// Print some debug logs to allow analysis on low end devices
	logger := log.New("epoch", epoch)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)

		logFn := logger.Debug
		if elapsed > 3*time.Second {
			logFn = logger.Info
		}
		logFn("Generated aquahash dataset", "elapsed", elapsed.Round(time.Millisecond))
	}()

	// Generate the dataset on many goroutines since it takes a while
	threads := runtime.NumCPU()
	items := uint64(len(dest) / hashWords)
	if items == 0 {
		return nil
	}
	batch := (items + uint64(threads) - 1) / uint64(threads)
	percent := items / 100
	if percent == 0 {
		percent = 1
	}

	var progress uint64
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		first := uint64(i) * batch
		if first >= items {
			break
		}
		limit := min(first+batch, items)

		g.Go(func() error {
			// Create a hasher to reuse between invocations
			keccak512 := makeHasher(hashBytes)

			for index := first; index < limit; index++ {
				if index%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				generateDatasetItem(dest[index*hashWords:], cache, uint32(index), parents, keccak512)

				if status := atomic.AddUint64(&progress, 1); status%percent == 0 {
					logger.Info("Generating DAG in progress", "percentage", status*100/items, "elapsed", time.Since(start).Round(time.Second))
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// hashimoto aggregates data from the full dataset in order to produce our final
// value for a particular header hash and nonce.
func hashimoto(hash []byte, nonce uint64, size uint64, accesses int, lookup func(index uint32) []uint32) ([]byte, []byte) {
	// Calculate the number of theoretical rows (we use one buffer nonetheless)
	rows := uint32(size / mixBytes)

	// Combine header+nonce into a 64 byte seed
	seed := make([]byte, hashBytes)
	copy(seed, hash)
	putUint64LE(seed[32:], nonce)

	makeHasher(hashBytes)(seed, seed[:40])
	seedHead := readUint32LE(seed, 0)

	// Start the mix with replicated seed
	mix := make([]uint32, mixWords)
	for i := 0; i < len(mix); i++ {
		mix[i] = readUint32LE(seed, i%16*4)
	}
	// Mix in random dataset nodes
	temp := make([]uint32, len(mix))

	for i := 0; i < accesses; i++ {
		parent := fnv(uint32(i)^seedHead, mix[i%len(mix)]) % rows
		for j := uint32(0); j < mixBytes/hashBytes; j++ {
			copy(temp[j*hashWords:], lookup(2*parent+j))
		}
		fnvHash(mix, temp)
	}
	// Compress mix
	for i := 0; i < len(mix); i += 4 {
		mix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}
	mix = mix[:len(mix)/4]

	digest := make([]byte, seedBytes)
	wordsToBytes(digest, mix)

	result := make([]byte, seedBytes)
	makeHasher(seedBytes)(result, append(seed, digest...))
	return digest, result
}

// hashimotoLight aggregates data from the full dataset (using only a small
// in-memory cache) in order to produce our final value for a particular header
// hash and nonce.
func hashimotoLight(size uint64, cache []uint32, hash []byte, nonce uint64, parents, accesses int) ([]byte, []byte) {
	keccak512 := makeHasher(hashBytes)

	lookup := func(index uint32) []uint32 {
		item := make([]uint32, hashWords)
		generateDatasetItem(item, cache, index, parents, keccak512)
		return item
	}
	return hashimoto(hash, nonce, size, accesses, lookup)
}

// hashimotoFull aggregates data from the full dataset (using the full in-memory
// dataset) in order to produce our final value for a particular header hash and
// nonce.
func hashimotoFull(dataset []uint32, hash []byte, nonce uint64, accesses int) ([]byte, []byte) {
	lookup := func(index uint32) []uint32 {
		offset := itemOffset(index)
		return dataset[offset : offset+hashWords]
	}
	return hashimoto(hash, nonce, uint64(len(dataset))*4, accesses, lookup)
}

// itemOffset is the word offset of a dataset item. Datasets pass 16 GiB, so
// it does not fit 32 bits.
func itemOffset(index uint32) uint64 {
	return uint64(index) * hashWords
}

// quickHash recomputes the result digest from a claimed mix digest without
// touching the cache or dataset.
func quickHash(hash []byte, nonce uint64, mix []byte) []byte {
	seed := make([]byte, hashBytes, hashBytes+seedBytes)
	copy(seed, hash)
	putUint64LE(seed[32:], nonce)
	makeHasher(hashBytes)(seed, seed[:40])

	result := make([]byte, seedBytes)
	makeHasher(seedBytes)(result, append(seed, mix...))
	return result
}
