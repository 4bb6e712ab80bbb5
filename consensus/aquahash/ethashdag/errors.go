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

import "errors"

var (
	// ErrInvalidParams is returned for parameter sets or modes that cannot
	// produce a valid cache or dataset.
	ErrInvalidParams = errors.New("invalid aquahash parameters")

	// ErrResourceExhaustion is returned when a dataset would not fit in memory.
	ErrResourceExhaustion = errors.New("insufficient memory for aquahash dataset")

	// ErrEpochMismatch is returned when a handle is used for a block outside
	// its epoch.
	ErrEpochMismatch = errors.New("block is outside the handle's epoch")

	ErrStorageCorruption = errors.New("corrupt aquahash store entry")
	ErrInvalidDumpMagic  = errors.New("invalid dump magic")
	ErrStoreMiss         = errors.New("aquahash store entry not found")
)
