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

import "sync"

// EpochOf returns the epoch a block belongs to under MainnetParams.
func EpochOf(block uint64) uint64 {
	return block / epochLength
}

// seedCache remembers the highest seed computed so far, so walking forward
// through epochs costs one hash per epoch instead of restarting from zero.
var seeds seedCache

type seedCache struct {
	mu    sync.Mutex
	epoch uint64
	seed  [32]byte
}

// SeedHash is the seed to use for generating a verification cache and the
// mining dataset of an epoch: zero for epoch 0, then a Keccak-256 chain.
func SeedHash(epoch uint64) []byte {
	return seeds.get(epoch)
}

func (s *seedCache) get(epoch uint64) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := make([]byte, 32)
	from := uint64(0)
	if epoch >= s.epoch {
		copy(seed, s.seed[:])
		from = s.epoch
	}
	keccak256 := makeHasher(seedBytes)
	for i := from; i < epoch; i++ {
		keccak256(seed, seed)
	}
	if epoch > s.epoch {
		s.epoch = epoch
		copy(s.seed[:], seed)
	}
	return seed
}
