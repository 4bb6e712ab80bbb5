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
	"errors"
	"math/big"

	"gitlab.com/aquachain/aquahash/common"
	"gitlab.com/aquachain/aquahash/consensus/aquahash/ethashdag"
)

var (
	errInvalidDifficulty = errors.New("non-positive difficulty")
	errInvalidMixDigest  = errors.New("invalid mix digest")
	errInvalidPoW        = errors.New("invalid proof-of-work")
)

// two256 is a big integer representing 2^256
var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Target returns the boundary 2^256 / difficulty a result digest must not exceed.
func Target(difficulty *big.Int) *big.Int {
	return new(big.Int).Div(two256, difficulty)
}

// MeetsTarget reports whether result, read as a big-endian number, is within target.
func MeetsTarget(result common.Hash, target *big.Int) bool {
	return new(big.Int).SetBytes(result[:]).Cmp(target) <= 0
}

// QuickCheck filters a claimed solution using only the mix digest. A true
// answer still needs VerifyPoW; a false one is final.
func QuickCheck(hash common.Hash, nonce uint64, mix common.Hash, difficulty *big.Int) bool {
	if difficulty.Sign() <= 0 {
		return false
	}
	return MeetsTarget(ethashdag.QuickHash(hash, nonce, mix), Target(difficulty))
}

// VerifyPoW checks whether a sealed header hash satisfies the PoW difficulty
// requirements, using only the verification cache of block's epoch.
func (aquahash *Aquahash) VerifyPoW(block uint64, hash common.Hash, nonce uint64, mix common.Hash, difficulty *big.Int) error {
	// Ensure that we have a valid difficulty for the block
	if difficulty.Sign() <= 0 {
		return errInvalidDifficulty
	}
	// Reject hopeless claims before touching the cache
	if !QuickCheck(hash, nonce, mix, difficulty) {
		return errInvalidPoW
	}
	digest, result := aquahash.ComputeLight(block, hash, nonce)
	if digest != mix {
		return errInvalidMixDigest
	}
	if !MeetsTarget(result, Target(difficulty)) {
		return errInvalidPoW
	}
	return nil
}

// Verify recomputes the digests of hash and nonce with the verification cache
// and compares both with the claimed ones.
func (aquahash *Aquahash) Verify(block uint64, hash common.Hash, nonce uint64, mix, result common.Hash) bool {
	haveMix, haveResult := aquahash.ComputeLight(block, hash, nonce)
	return haveMix == mix && haveResult == result
}
