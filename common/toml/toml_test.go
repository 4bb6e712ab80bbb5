package toml

import (
	"bytes"
	"strings"
	"testing"
)

type testConfig struct {
	CacheDir    string
	CachesInMem int
}

func TestDecodeStrict(t *testing.T) {
	var cfg testConfig
	if err := DecodeStrict(strings.NewReader("CacheDir = \"c\"\nCachesInMem = 4\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.CacheDir != "c" || cfg.CachesInMem != 4 {
		t.Fatalf("bad decode: %+v", cfg)
	}
	err := DecodeStrict(strings.NewReader("CacheDir = \"c\"\nBogus = 1\n"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "Bogus") {
		t.Fatalf("unknown key not rejected: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := testConfig{CacheDir: "/tmp/aquahash", CachesInMem: 2}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatal(err)
	}
	var out testConfig
	if err := DecodeStrict(&buf, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("have %+v, want %+v", out, in)
	}
}
