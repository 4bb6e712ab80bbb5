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
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"gitlab.com/aquachain/aquahash/common/sense"
	"gitlab.com/aquachain/aquahash/common/toml"
)

// Mode defines the type and amount of PoW verification an aquahash engine makes.
type Mode uint

const (
	ModeNormal Mode = iota
	ModeShared
	ModeTest
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeShared:
		return "shared"
	case ModeTest:
		return "test"
	default:
		return fmt.Sprintf("mode(%d)", uint(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m > ModeTest {
		return nil, fmt.Errorf("%w: unknown pow mode %d", ErrInvalidParams, uint(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal", "":
		*m = ModeNormal
	case "shared":
		*m = ModeShared
	case "test":
		*m = ModeTest
	default:
		return fmt.Errorf("%w: unknown pow mode %q", ErrInvalidParams, text)
	}
	return nil
}

// Sizes forced by ModeTest, shared with the reference test vectors.
const (
	testCacheBytes   = 1024
	testDatasetBytes = 32 * 1024
)

// Params are the consensus constants of the algorithm. Changing any of them
// changes every cache, dataset and digest.
type Params struct {
	EpochLength        uint64
	CacheInitBytes     uint64
	CacheGrowthBytes   uint64
	DatasetInitBytes   uint64
	DatasetGrowthBytes uint64
	CacheRounds        int
	DatasetParents     int
	LoopAccesses       int
}

// MainnetParams are the parameters every aquahash node agrees on.
var MainnetParams = Params{
	EpochLength:        epochLength,
	CacheInitBytes:     cacheInitBytes,
	CacheGrowthBytes:   cacheGrowthBytes,
	DatasetInitBytes:   datasetInitBytes,
	DatasetGrowthBytes: datasetGrowthBytes,
	CacheRounds:        cacheRounds,
	DatasetParents:     datasetParents,
	LoopAccesses:       loopAccesses,
}

// Validate rejects parameter sets that would produce misaligned rows or
// never terminate.
func (p *Params) Validate() error {
	switch {
	case p.EpochLength == 0:
		return fmt.Errorf("%w: zero epoch length", ErrInvalidParams)
	case p.CacheInitBytes < hashBytes || p.CacheInitBytes%hashBytes != 0 || p.CacheGrowthBytes%hashBytes != 0:
		return fmt.Errorf("%w: cache sizes must be multiples of %d", ErrInvalidParams, hashBytes)
	case p.DatasetInitBytes < mixBytes || p.DatasetInitBytes%mixBytes != 0 || p.DatasetGrowthBytes%mixBytes != 0:
		return fmt.Errorf("%w: dataset sizes must be multiples of %d", ErrInvalidParams, mixBytes)
	case p.CacheRounds <= 0:
		return fmt.Errorf("%w: cache rounds must be positive", ErrInvalidParams)
	case p.DatasetParents <= 0 || p.LoopAccesses <= 0:
		return fmt.Errorf("%w: parents and accesses must be positive", ErrInvalidParams)
	}
	return nil
}

// Dump writes the file form of c, suitable for LoadConfig.
func (c *Config) Dump(w io.Writer) error {
	return toml.Encode(w, c)
}

// Config are the configuration parameters of the aquahash DAG manager.
type Config struct {
	CacheDir       string
	CachesInMem    int
	CachesOnDisk   int
	DatasetDir     string
	DatasetsInMem  int
	DatasetsOnDisk int
	PowMode        Mode

	// Params defaults to MainnetParams when nil.
	Params *Params `toml:"-"`

	// Store overrides the per-directory dump stores, for example with a
	// leveldb backed one. Used for both caches and datasets.
	Store Store `toml:"-"`
}

// DefaultConfig returns the settings used by the aquahash tool.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:       "aquahash",
		CachesInMem:    2,
		CachesOnDisk:   3,
		DatasetDir:     DefaultDatasetDirByOS(),
		DatasetsInMem:  1,
		DatasetsOnDisk: 2,
		PowMode:        ModeNormal,
	}
}

// DefaultDatasetDirByOS returns the per-user dataset directory, overridable
// with AQUAHASH_DATASET_DIR.
func DefaultDatasetDirByOS() string {
	if custom := sense.Getenv("AQUAHASH_DATASET_DIR"); custom != "" {
		return custom
	}
	home := sense.Getenv("HOME")
	if home == "" {
		if user, err := user.Current(); err == nil {
			home = user.HomeDir
		}
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Aquahash")
	}
	return filepath.Join(home, ".aquahash")
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := toml.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) params() *Params {
	if c.Params != nil {
		return c.Params
	}
	return &MainnetParams
}

func (c *Config) cacheBytes(epoch uint64) uint64 {
	if c.PowMode == ModeTest {
		return testCacheBytes
	}
	return CacheSizeFor(c.params(), epoch)
}

func (c *Config) datasetBytes(epoch uint64) uint64 {
	if c.PowMode == ModeTest {
		return testDatasetBytes
	}
	return DatasetSizeFor(c.params(), epoch)
}
