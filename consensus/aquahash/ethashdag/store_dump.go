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
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edsrzf/mmap-go"
)

// DumpStore keeps one memory mapped file per entry in a directory.
type DumpStore struct {
	dir string
}

// NewDumpStore returns a store rooted at dir. The directory is created on
// the first Save.
func NewDumpStore(dir string) *DumpStore {
	return &DumpStore{dir: dir}
}

func (s *DumpStore) path(key Key) string {
	return filepath.Join(s.dir, key.String())
}

func (s *DumpStore) Has(key Key) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

func (s *DumpStore) Load(key Key, size uint64) ([]byte, error) {
	data := make([]byte, size)
	err := s.view(key, size, func(mem []byte) { copy(data, mem) })
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DumpStore) LoadWords(key Key, dst []uint32) error {
	return s.view(key, uint64(len(dst))*4, func(mem []byte) { bytesToWords(dst, mem) })
}

// view maps the entry read only and hands the payload after the magic to fn.
func (s *DumpStore) view(key Key, size uint64, fn func(mem []byte)) error {
	path := s.path(key)
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrStoreMiss
	}
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if uint64(info.Size()) != size+dumpMagicLen {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrStorageCorruption, key, info.Size(), size+dumpMagicLen)
	}
	mem, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return err
	}
	defer mem.Unmap()

	if err := checkMagic(mem); err != nil {
		mem.Unmap()
		file.Close()
		os.Remove(path)
		return err
	}
	fn(mem[dumpMagicLen:])
	return nil
}

func (s *DumpStore) Save(key Key, data []byte) error {
	return s.generate(key, uint64(len(data)), func(mem []byte) { copy(mem, data) })
}

func (s *DumpStore) SaveWords(key Key, src []uint32) error {
	return s.generate(key, uint64(len(src))*4, func(mem []byte) { wordsToBytes(mem, src) })
}

// generate memory maps a temporary file for write access, fills it and then
// moves it into the final path, so readers never see a partial entry.
func (s *DumpStore) generate(key Key, size uint64, fill func(mem []byte)) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	path := s.path(key)
	temp := path + "." + strconv.Itoa(rand.Int())

	dump, err := os.Create(temp)
	if err != nil {
		return err
	}
	fail := func(err error) error {
		dump.Close()
		os.Remove(temp)
		return err
	}
	if err := dump.Truncate(int64(size + dumpMagicLen)); err != nil {
		return fail(err)
	}
	mem, err := mmap.Map(dump, mmap.RDWR, 0)
	if err != nil {
		return fail(err)
	}
	putMagic(mem)
	fill(mem[dumpMagicLen:])

	if err := mem.Flush(); err != nil {
		mem.Unmap()
		return fail(err)
	}
	if err := mem.Unmap(); err != nil {
		return fail(err)
	}
	if err := dump.Close(); err != nil {
		os.Remove(temp)
		return err
	}
	return os.Rename(temp, path)
}

func (s *DumpStore) Delete(key Key) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
