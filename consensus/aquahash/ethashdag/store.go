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
	"encoding/binary"
	"fmt"
)

// algorithmRevision is the data structure version used for entry naming.
const algorithmRevision = 23

// dumpMagic prefixes every stored cache or dataset, little-endian.
const dumpMagic uint64 = 0xfee1deadbaddcafe

const dumpMagicLen = 8

// Kind tells caches and datasets apart in a Store.
type Kind string

const (
	KindCache   Kind = "cache"
	KindDataset Kind = "full"
)

// Key identifies one stored cache or dataset. Tag digests the parameters and
// sizes the entry was generated with, so engines configured differently can
// share a directory without reading or deleting each other's entries.
type Key struct {
	Kind  Kind
	Epoch uint64
	Seed  [32]byte
	Tag   [4]byte
}

func (k Key) String() string {
	return fmt.Sprintf("%s-R%d-%x-%x", k.Kind, algorithmRevision, k.Seed[:8], k.Tag[:])
}

// Store persists generated caches and datasets between runs. Entries hold
// the raw little-endian bytes without the magic prefix.
//
// Load returns ErrStoreMiss for absent entries. Entries of the wrong length
// or with a bad magic are deleted and reported as ErrStorageCorruption.
type Store interface {
	Has(key Key) bool
	Load(key Key, size uint64) ([]byte, error)
	Save(key Key, data []byte) error
	Delete(key Key) error
}

// wordStore is implemented by stores that can move words without an
// intermediate byte copy, which matters for multi-gigabyte datasets.
type wordStore interface {
	LoadWords(key Key, dst []uint32) error
	SaveWords(key Key, src []uint32) error
}

// storeKey builds the key of an epoch's entry under c. seed must be the
// epoch's seed hash.
func (c *Config) storeKey(kind Kind, epoch uint64, seed []byte) Key {
	k := Key{Kind: kind, Epoch: epoch}
	copy(k.Seed[:], seed)

	p := c.params()
	fields := []uint64{
		p.EpochLength, p.CacheInitBytes, p.CacheGrowthBytes, p.DatasetInitBytes, p.DatasetGrowthBytes,
		uint64(p.CacheRounds), uint64(p.DatasetParents), uint64(p.LoopAccesses),
		c.cacheBytes(epoch), c.datasetBytes(epoch),
	}
	buf := make([]byte, 0, len(fields)*8)
	for _, v := range fields {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	sum := make([]byte, seedBytes)
	makeHasher(seedBytes)(sum, buf)
	copy(k.Tag[:], sum)
	return k
}

// loadWords reads an entry into dst, decoding the little-endian layout.
func loadWords(s Store, key Key, dst []uint32) error {
	if ws, ok := s.(wordStore); ok {
		return ws.LoadWords(key, dst)
	}
	data, err := s.Load(key, uint64(len(dst))*4)
	if err != nil {
		return err
	}
	bytesToWords(dst, data)
	return nil
}

func saveWords(s Store, key Key, src []uint32) error {
	if ws, ok := s.(wordStore); ok {
		return ws.SaveWords(key, src)
	}
	data := make([]byte, len(src)*4)
	wordsToBytes(data, src)
	return s.Save(key, data)
}

func putMagic(b []byte) {
	binary.LittleEndian.PutUint64(b, dumpMagic)
}

func checkMagic(b []byte) error {
	if len(b) < dumpMagicLen || binary.LittleEndian.Uint64(b) != dumpMagic {
		return fmt.Errorf("%w: %w", ErrStorageCorruption, ErrInvalidDumpMagic)
	}
	return nil
}
