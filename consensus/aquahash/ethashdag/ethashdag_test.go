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
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cespare/cp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gitlab.com/aquachain/aquahash/common"
)

var (
	testHeader = common.HexToHash("0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f")
	testDigest = common.HexToHash("0xe4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800")
	testResult = common.HexToHash("0xd3539235ee2e6f8db665c0a72169f55b7f6c605712330b778ec3944f0eb5a557")
)

func newTestDAG(t *testing.T, cfg *Config) *EthashDAG {
	t.Helper()
	cfg.PowMode = ModeTest
	d, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// Tests that the light and full handles of a test mode manager reproduce the
// reference vector.
func TestTestMode(t *testing.T) {
	d := newTestDAG(t, &Config{CachesInMem: 1, DatasetsInMem: 1})

	light := d.Light(0)
	mix, result := light.Compute(testHeader, 0)
	require.Equal(t, testDigest, mix)
	require.Equal(t, testResult, result)

	full, err := d.Full(0)
	require.NoError(t, err)
	require.True(t, full.Generated())
	require.Same(t, light, full.Light())

	mix, result, err = ComputeFull(epochLength-1, full, testHeader, 0)
	require.NoError(t, err)
	require.Equal(t, testDigest, mix)
	require.Equal(t, testResult, result)

	_, _, err = ComputeFull(epochLength, full, testHeader, 0)
	require.ErrorIs(t, err, ErrEpochMismatch)
}

// Tests that light and full agree for arbitrary inputs across epochs.
func TestLightFullEquivalence(t *testing.T) {
	d := newTestDAG(t, &Config{CachesInMem: 2, DatasetsInMem: 2})
	r := rand.New(rand.NewSource(1))

	for _, block := range []uint64{0, epochLength + 5, 2*epochLength + 100} {
		full, err := d.Full(block)
		require.NoError(t, err)
		light := d.Light(block)
		require.Equal(t, d.EpochOf(block), light.Epoch())

		for i := 0; i < 8; i++ {
			var hash common.Hash
			r.Read(hash[:])
			nonce := r.Uint64()

			lmix, lres := light.Compute(hash, nonce)
			fmix, fres := full.Compute(hash, nonce)
			require.Equal(t, lmix, fmix, "block %d nonce %d", block, nonce)
			require.Equal(t, lres, fres, "block %d nonce %d", block, nonce)
		}
	}
}

// Tests that the newest handle is published and older lookups still work.
func TestLatestHandle(t *testing.T) {
	d := newTestDAG(t, &Config{CachesInMem: 3})

	first := d.Light(0)
	second := d.Light(epochLength)
	require.Same(t, second, d.latestLight.Load())

	again := d.Light(1)
	require.Same(t, first, again)
	require.Same(t, second, d.latestLight.Load())
	require.Equal(t, common.BytesToHash(SeedHash(1)), second.Seed())
}

// This test checks that cache lru logic doesn't crash under load.
func TestCacheFileEvict(t *testing.T) {
	d := newTestDAG(t, &Config{CachesInMem: 3, CachesOnDisk: 10, CacheDir: t.TempDir()})

	workers := 8
	epochs := 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go verifyTest(&wg, d, i, epochs)
	}
	wg.Wait()
	require.LessOrEqual(t, d.caches.len(), 3)
}

func verifyTest(wg *sync.WaitGroup, d *EthashDAG, workerIndex, epochs int) {
	defer wg.Done()

	const wiggle = 4 * epochLength
	r := rand.New(rand.NewSource(int64(workerIndex)))
	for epoch := 0; epoch < epochs; epoch++ {
		block := int64(epoch)*epochLength - wiggle/2 + r.Int63n(wiggle)
		if block < 0 {
			block = 0
		}
		d.Light(uint64(block)).Compute(testHeader, uint64(block))
	}
}

// Tests that caches generated on disk may be done concurrently.
func TestConcurrentDiskCacheGeneration(t *testing.T) {
	cachedir := t.TempDir()
	block := uint64(3311058)

	var (
		pend    sync.WaitGroup
		results [3]common.Hash
	)
	for i := 0; i < len(results); i++ {
		pend.Add(1)
		go func(idx int) {
			defer pend.Done()
			d, err := New(&Config{CacheDir: cachedir, CachesOnDisk: 1, PowMode: ModeTest})
			if err != nil {
				t.Errorf("proc %d: %v", idx, err)
				return
			}
			defer d.Close()
			_, results[idx] = d.Light(block).Compute(testHeader, 0xf400cd0006070c49)
		}(i)
	}
	pend.Wait()
	require.Equal(t, results[0], results[1])
	require.Equal(t, results[0], results[2])

	files, err := filepath.Glob(filepath.Join(cachedir, "cache-R23-*"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
}

// Tests that a second manager loads what the first one persisted.
func TestStoreReuse(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	hits := storeLookups.WithLabelValues(string(KindCache), "hit")
	before := testutil.ToFloat64(hits)

	first := newTestDAG(t, &Config{Store: store, CachesOnDisk: 2, DatasetsOnDisk: 2})
	_, want := first.Light(0).Compute(testHeader, 7)
	full, err := first.Full(0)
	require.NoError(t, err)
	require.True(t, store.Has(newKey(KindDataset, 0)))

	second := newTestDAG(t, &Config{Store: store, CachesOnDisk: 2, DatasetsOnDisk: 2})
	_, have := second.Light(0).Compute(testHeader, 7)
	require.Equal(t, want, have)
	require.Greater(t, testutil.ToFloat64(hits), before)

	reloaded, err := second.Full(0)
	require.NoError(t, err)
	require.Equal(t, full.dataset, reloaded.dataset)
}

// Tests that a cache dump copied into another directory is picked up there
// instead of being regenerated.
func TestCopiedCacheDump(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	first := newTestDAG(t, &Config{CacheDir: src, CachesOnDisk: 1})
	_, want := first.Light(0).Compute(testHeader, 3)

	name := newKey(KindCache, 0).String()
	require.NoError(t, cp.CopyFile(filepath.Join(dst, name), filepath.Join(src, name)))

	hits := storeLookups.WithLabelValues(string(KindCache), "hit")
	before := testutil.ToFloat64(hits)

	second := newTestDAG(t, &Config{CacheDir: dst, CachesOnDisk: 1})
	_, have := second.Light(0).Compute(testHeader, 3)
	require.Equal(t, want, have)
	require.Greater(t, testutil.ToFloat64(hits), before)
}

// Tests that the cache in use survives on disk when only one is kept, even
// after the future cache has been written next to it.
func TestDiskKeepsCurrentCache(t *testing.T) {
	dir := t.TempDir()
	d := newTestDAG(t, &Config{CacheDir: dir, CachesOnDisk: 1})
	d.Light(0)
	require.NoError(t, d.Close()) // waits for the future cache

	store := NewDumpStore(dir)
	require.True(t, store.Has(newKey(KindCache, 0)), "current cache pruned")
	require.True(t, store.Has(newKey(KindCache, 1)), "future cache missing")
}

// Tests that engines with different sizes or parameters sharing a cache
// directory neither destroy nor load each other's entries.
func TestSharedCacheDir(t *testing.T) {
	dir := t.TempDir()
	store := NewDumpStore(dir)

	mainnet := (&Config{}).storeKey(KindCache, 0, SeedHash(0))
	mainnetCache := make([]uint32, CacheSize(0)/4)
	mainnetCache[0] = 0xdeadbeef
	require.NoError(t, saveWords(store, mainnet, mainnetCache))

	test := newTestDAG(t, &Config{CacheDir: dir, CachesOnDisk: 3})
	_, want := test.Light(0).Compute(testHeader, 0)
	require.Equal(t, testResult, want)
	require.True(t, store.Has(mainnet), "mainnet cache removed by a test mode engine")

	rounds := MainnetParams
	rounds.CacheRounds = 2
	custom := newTestDAG(t, &Config{CacheDir: dir, CachesOnDisk: 3, Params: &rounds})
	_, have := custom.Light(0).Compute(testHeader, 0)

	fresh := newTestDAG(t, &Config{Params: &rounds})
	_, expect := fresh.Light(0).Compute(testHeader, 0)
	require.Equal(t, expect, have, "cache of other parameters loaded")
	require.NotEqual(t, want, have)
}

// Tests that generating the future dataset does not push the cache manager
// two epochs ahead.
func TestFutureDatasetCache(t *testing.T) {
	d := newTestDAG(t, &Config{CachesInMem: 2, DatasetsInMem: 1})
	_, err := d.Full(0)
	require.NoError(t, err)
	require.NoError(t, d.Close()) // waits for the future dataset

	require.Equal(t, uint64(1), d.caches.future)
	require.Equal(t, uint64(1), d.datasets.future)
	require.Equal(t, 1, d.caches.len())
}

func TestResourceExhaustion(t *testing.T) {
	defer func(fn func() uint64) { totalMemory = fn }(totalMemory)
	totalMemory = func() uint64 { return 1024 }

	d := newTestDAG(t, &Config{})
	_, err := d.Full(0)
	require.ErrorIs(t, err, ErrResourceExhaustion)
}

func TestCloseAbandonsGeneration(t *testing.T) {
	d := newTestDAG(t, &Config{})
	require.NoError(t, d.Close())

	_, err := d.Full(0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(&Config{PowMode: Mode(9)})
	require.ErrorIs(t, err, ErrInvalidParams)

	p := MainnetParams
	p.EpochLength = 0
	_, err = New(&Config{Params: &p})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aquahash.toml")
	require.NoError(t, os.WriteFile(path, []byte("CacheDir = \"/tmp/c\"\nCachesInMem = 4\nPowMode = \"test\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/c", cfg.CacheDir)
	require.Equal(t, 4, cfg.CachesInMem)
	require.Equal(t, ModeTest, cfg.PowMode)
	require.Equal(t, DefaultConfig().DatasetsInMem, cfg.DatasetsInMem)

	var buf bytes.Buffer
	require.NoError(t, cfg.Dump(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)

	require.NoError(t, os.WriteFile(path, []byte("Bogus = 1\n"), 0644))
	_, err = LoadConfig(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("PowMode = \"fake\"\n"), 0644))
	_, err = LoadConfig(path)
	require.ErrorContains(t, err, "unknown pow mode")
}

func TestDefaultDatasetDir(t *testing.T) {
	t.Setenv("AQUAHASH_DATASET_DIR", "/data/dag")
	require.Equal(t, "/data/dag", DefaultDatasetDirByOS())
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))
}
