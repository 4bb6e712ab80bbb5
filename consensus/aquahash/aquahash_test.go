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
	"math/big"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/common/log"
)

func init() {
	log.ResetForTesting()
}

const epochLength = 30000

var testHeader = common.HexToHash("0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f")

// Tests that aquahash works correctly in test mode.
func TestTestMode(t *testing.T) {
	aquahash := NewTester()
	defer aquahash.Close()

	difficulty := big.NewInt(100)
	res, err := aquahash.Search(context.Background(), 1, testHeader, difficulty)
	if err != nil {
		t.Fatalf("failed to search nonce: %v", err)
	}
	if err := aquahash.VerifyPoW(1, testHeader, res.Nonce, res.MixDigest, difficulty); err != nil {
		t.Fatalf("unexpected verification error: %+v", err)
	}
	if !aquahash.Verify(1, testHeader, res.Nonce, res.MixDigest, res.Digest) {
		t.Fatal("light verification disagrees with search")
	}
	if !QuickCheck(testHeader, res.Nonce, res.MixDigest, difficulty) {
		t.Fatal("quick check rejected a valid solution")
	}
	if aquahash.Hashrate() <= 0 {
		t.Fatal("hashrate not measured")
	}
}

// Tests the reference vector through the engine.
func TestComputeReference(t *testing.T) {
	aquahash := NewTester()
	defer aquahash.Close()

	wantMix := common.HexToHash("0xe4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800")
	wantResult := common.HexToHash("0xd3539235ee2e6f8db665c0a72169f55b7f6c605712330b778ec3944f0eb5a557")

	mix, result := aquahash.ComputeLight(0, testHeader, 0)
	require.Equal(t, wantMix, mix)
	require.Equal(t, wantResult, result)

	mix, result, err := aquahash.ComputeFull(0, testHeader, 0)
	require.NoError(t, err)
	require.Equal(t, wantMix, mix)
	require.Equal(t, wantResult, result)

	require.True(t, aquahash.Verify(0, testHeader, 0, wantMix, wantResult))
	require.False(t, aquahash.Verify(0, testHeader, 1, wantMix, wantResult))
}

func TestVerifyPoWRejects(t *testing.T) {
	aquahash := NewTester()
	defer aquahash.Close()

	mix, result := aquahash.ComputeLight(0, testHeader, 0)

	// difficulty 1 accepts any digest, so only the mix can fail
	bad := mix
	bad[0] ^= 1
	require.ErrorIs(t, aquahash.VerifyPoW(0, testHeader, 0, bad, big.NewInt(1)), errInvalidMixDigest)
	require.NoError(t, aquahash.VerifyPoW(0, testHeader, 0, mix, big.NewInt(1)))

	// a boundary just below the result
	target := new(big.Int).SetBytes(result[:])
	difficulty := new(big.Int).Div(two256, target)
	difficulty.Add(difficulty, big.NewInt(1))
	require.ErrorIs(t, aquahash.VerifyPoW(0, testHeader, 0, mix, difficulty), errInvalidPoW)

	require.ErrorIs(t, aquahash.VerifyPoW(0, testHeader, 0, mix, big.NewInt(0)), errInvalidDifficulty)
}

func TestBoundary(t *testing.T) {
	var max common.Hash
	for i := range max {
		max[i] = 0xff
	}
	require.True(t, MeetsTarget(max, Target(big.NewInt(1))))
	require.False(t, MeetsTarget(max, Target(big.NewInt(2))))

	half := common.HexToHash("0x8000000000000000000000000000000000000000000000000000000000000000")
	require.True(t, MeetsTarget(half, Target(big.NewInt(2))))
	require.False(t, QuickCheck(testHeader, 0, common.Hash{}, big.NewInt(-1)))
}

func TestSearchCancel(t *testing.T) {
	aquahash := NewTester()
	defer aquahash.Close()
	aquahash.SetThreads(2)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// nothing meets a boundary of one
	impossible := new(big.Int).Set(two256)
	_, err := aquahash.Search(ctx, 0, testHeader, impossible)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchThreads(t *testing.T) {
	aquahash := NewTester()
	defer aquahash.Close()

	aquahash.SetThreads(-1)
	_, err := aquahash.Search(context.Background(), 0, testHeader, big.NewInt(10))
	require.ErrorIs(t, err, errNoMiningThreads)

	aquahash.SetThreads(1)
	require.Equal(t, 1, aquahash.Threads())

	// a thread change while searching restarts the workers without losing the search
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := aquahash.Search(ctx, 0, testHeader, big.NewInt(5000))
		done <- err
	}()
	aquahash.SetThreads(3)
	require.NoError(t, <-done)
}

func TestSharedThreads(t *testing.T) {
	shared := NewSharedTesting()
	defer shared.SetThreads(0)

	shared.SetThreads(2)
	require.Equal(t, 2, sharedEngine().Threads())
	require.Equal(t, 2, NewSharedTesting().Threads())
	require.NoError(t, shared.Close())

	viaNew, err := New(&Config{PowMode: ModeShared})
	require.NoError(t, err)
	require.Same(t, sharedEngine(), viaNew.shared)
	require.Same(t, shared.dag(), viaNew.dag())
}

// This test checks that cache lru logic doesn't crash under load.
func TestCacheFileEvict(t *testing.T) {
	e, err := New(&Config{CachesInMem: 3, CachesOnDisk: 10, CacheDir: t.TempDir(), PowMode: ModeTest})
	require.NoError(t, err)
	defer e.Close()

	workers := 8
	epochs := 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go verifyTest(&wg, e, i, epochs)
	}
	wg.Wait()
}

func verifyTest(wg *sync.WaitGroup, e *Aquahash, workerIndex, epochs int) {
	defer wg.Done()

	const wiggle = 4 * epochLength
	r := rand.New(rand.NewSource(int64(workerIndex)))
	for epoch := 0; epoch < epochs; epoch++ {
		block := int64(epoch)*epochLength - wiggle/2 + r.Int63n(wiggle)
		if block < 0 {
			block = 0
		}
		e.VerifyPoW(uint64(block), testHeader, uint64(r.Int63()), common.Hash{}, big.NewInt(1))
	}
}

// Tests that caches generated on disk may be done concurrently.
func TestConcurrentDiskCacheGeneration(t *testing.T) {
	cachedir := t.TempDir()

	var (
		block = uint64(3311058)
		mix   = common.HexToHash("0x3e140b0784516af5e5ec6730f2fb20cca22f32be399b9e4ad77d32541f798cd0")
		nonce = uint64(0xf400cd0006070c49)
	)
	tester := NewTester()
	defer tester.Close()
	want, _ := tester.ComputeLight(block, testHeader, nonce)

	// Simulate multiple processes sharing the same datadir
	var pend sync.WaitGroup
	for i := 0; i < 3; i++ {
		pend.Add(1)

		go func(idx int) {
			defer pend.Done()
			aquahash, err := New(&Config{CacheDir: cachedir, CachesOnDisk: 1, PowMode: ModeTest})
			if err != nil {
				t.Errorf("proc %d: %v", idx, err)
				return
			}
			defer aquahash.Close()
			if have, _ := aquahash.ComputeLight(block, testHeader, nonce); have != want {
				t.Errorf("proc %d: mix mismatch: have %x, want %x", idx, have, want)
			}
			// an unrelated mix digest must never verify
			if err := aquahash.VerifyPoW(block, testHeader, nonce, mix, big.NewInt(1)); err == nil {
				t.Errorf("proc %d: foreign mix digest accepted", idx)
			}
		}(i)
	}
	pend.Wait()
}

func TestSeedHash(t *testing.T) {
	require.Equal(t, make([]byte, 32), SeedHash(epochLength-1))
	require.Equal(t, common.FromHex("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"), SeedHash(epochLength))
}
