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

package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ShortGoVersion returns the Go release the binary was built with, with
// development builds reported as "godev1.xx".
func ShortGoVersion() string {
	v := runtime.Version()
	if rest, ok := strings.CutPrefix(v, "devel "); ok {
		v = strings.Replace(rest, "go", "godev", 1)
	}
	v, _, _ = strings.Cut(v, "-")
	if len(v) > 10 {
		v = v[:10]
	}
	return v
}

// MakeName builds the identifier printed by the version command:
// name/vVERSION/GOOS/GOVERSION.
func MakeName(name, version string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, version, runtime.GOOS, ShortGoVersion())
}

// FileExist reports whether something exists at filePath. Errors other
// than not-exist count as existing so callers fail later with the real cause.
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, fs.ErrNotExist)
}

// AbsolutePath returns datadir + filename, or filename if it is absolute.
func AbsolutePath(datadir string, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(datadir, filename)
}
