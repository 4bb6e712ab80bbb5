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

// Package sha3 wraps the legacy Keccak sponge used by aquahash.
package sha3

import (
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedLength is returned when a sponge is requested with an output
// length the aquahash parameters do not use.
var ErrUnsupportedLength = errors.New("unsupported sponge output length")

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := NewKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

func NewKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak512 calculates and returns the Keccak512 hash of the input data.
//
// only used for aquahash
func Keccak512(data ...[]byte) []byte {
	d := NewKeccak512Hasher()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

func NewKeccak512Hasher() hash.Hash {
	return sha3.NewLegacyKeccak512()
}

// NewSponge returns a fresh Keccak state squeezing outLen bytes. Only the
// 32 and 64 byte variants exist.
func NewSponge(outLen int) (hash.Hash, error) {
	switch outLen {
	case 32:
		return NewKeccak256(), nil
	case 64:
		return NewKeccak512Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLength, outLen)
	}
}

// Sum absorbs data into a fresh sponge and squeezes outLen bytes.
func Sum(outLen int, data ...[]byte) ([]byte, error) {
	h, err := NewSponge(outLen)
	if err != nil {
		return nil, err
	}
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil), nil
}
