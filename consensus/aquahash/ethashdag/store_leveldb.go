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
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDBStore keeps entries in a leveldb database, keyed by kind, epoch and
// parameter tag.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (or creates) a leveldb database at path.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		// entries are pseudorandom, compression only costs time
		Compression: opt.NoCompression,
	})
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

// NewMemoryStore returns a leveldb store backed by memory only.
func NewMemoryStore() *LevelDBStore {
	db, err := leveldb.Open(storage.NewMemStorage(), &opt.Options{Compression: opt.NoCompression})
	if err != nil {
		// memory storage cannot fail to open
		panic(err)
	}
	return &LevelDBStore{db: db}
}

func levelKey(key Key) []byte {
	prefix := fmt.Sprintf("%s-R%d-", key.Kind, algorithmRevision)
	return append(binary.BigEndian.AppendUint64([]byte(prefix), key.Epoch), key.Tag[:]...)
}

func (s *LevelDBStore) Has(key Key) bool {
	ok, _ := s.db.Has(levelKey(key), nil)
	return ok
}

func (s *LevelDBStore) Load(key Key, size uint64) ([]byte, error) {
	blob, err := s.db.Get(levelKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrStoreMiss
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(blob)) != size+dumpMagicLen {
		s.Delete(key)
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrStorageCorruption, key, len(blob), size+dumpMagicLen)
	}
	if err := checkMagic(blob); err != nil {
		s.Delete(key)
		return nil, err
	}
	return blob[dumpMagicLen:], nil
}

func (s *LevelDBStore) Save(key Key, data []byte) error {
	blob := make([]byte, dumpMagicLen+len(data))
	putMagic(blob)
	copy(blob[dumpMagicLen:], data)
	return s.db.Put(levelKey(key), blob, nil)
}

func (s *LevelDBStore) Delete(key Key) error {
	return s.db.Delete(levelKey(key), nil)
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
