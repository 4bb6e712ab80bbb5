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

import "encoding/binary"

// All cache rows, dataset items and digests are little-endian on every host.

func readUint32LE(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func writeUint32LE(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func putUint64LE(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// bytesToWords decodes len(dst) little-endian words from src.
func bytesToWords(dst []uint32, src []byte) {
	for i := range dst {
		dst[i] = readUint32LE(src, i*4)
	}
}

// wordsToBytes encodes src into dst, which must hold 4*len(src) bytes.
func wordsToBytes(dst []byte, src []uint32) {
	for i, w := range src {
		writeUint32LE(dst, i*4, w)
	}
}
