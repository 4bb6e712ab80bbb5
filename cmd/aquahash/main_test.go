// Copyright 2018 The aquachain Authors
// This file is part of aquachain.
//
// aquachain is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// aquachain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with aquachain. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gitlab.com/aquachain/aquahash/common/log"
)

func init() {
	log.ResetForTesting()
	color.NoColor = true
}

// runApp runs the tool in process and returns what it printed.
func runApp(t *testing.T, args ...string) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	runErr := newApp().Run(append([]string{"aquahash", "--verbosity", "warn"}, args...))
	w.Close()
	out, _ := io.ReadAll(r)
	if runErr != nil {
		t.Fatalf("%v: %v", args, runErr)
	}
	return string(out)
}

func TestHashCommand(t *testing.T) {
	dir := t.TempDir()
	out := runApp(t, "--test", "--datadir", dir, "hash", "0",
		"0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f", "0")
	for _, want := range []string{
		"0xe4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800",
		"0xd3539235ee2e6f8db665c0a72169f55b7f6c605712330b778ec3944f0eb5a557",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in output:\n%s", want, out)
		}
	}
}

func TestVerifyCommand(t *testing.T) {
	out := runApp(t, "--test", "--datadir", t.TempDir(), "verify", "0",
		"0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f", "0",
		"0xe4073cffaef931d37117cefd9afd27ea0f1cad6a981dd2605c4a1ac97c519800", "1")
	if strings.TrimSpace(out) != "valid" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSeedhashCommand(t *testing.T) {
	out := runApp(t, "seedhash", "30000")
	for _, want := range []string{
		"0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563",
		"16907456",
		"1082130304",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in output:\n%s", want, out)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/aquahash.toml"
	if err := os.WriteFile(path, []byte("PowMode = \"test\"\nCacheDir = \"caches\"\nCachesOnDisk = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runApp(t, "--config", path, "--datadir", dir, "hash", "0",
		"0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f", "0")
	for _, epoch := range []string{"0000000000000000", "290decd9548b62a8"} {
		matches, err := filepath.Glob(filepath.Join(dir, "caches", "cache-R23-"+epoch+"-*"))
		if err != nil || len(matches) != 1 {
			t.Fatalf("cache %s not kept below datadir: %v %v", epoch, matches, err)
		}
	}
}

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()
	out := runApp(t, "--test", "--datadir", dir, "dumpconfig")
	if !strings.Contains(out, `PowMode = "test"`) {
		t.Fatalf("test mode missing from:\n%s", out)
	}
	path := dir + "/dumped.toml"
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		t.Fatal(err)
	}
	if again := runApp(t, "--config", path, "--datadir", dir, "dumpconfig"); again != out {
		t.Fatalf("dumped config does not reload:\n%s\nvs\n%s", out, again)
	}
}
