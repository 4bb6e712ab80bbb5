package sha3

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestKeccak256Empty(t *testing.T) {
	want, _ := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	if got := Keccak256(); !bytes.Equal(got, want) {
		t.Fatalf("keccak256 of nothing: have %x, want %x", got, want)
	}
}

func TestKeccak256ZeroWord(t *testing.T) {
	want, _ := hex.DecodeString("290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563")
	if got := Keccak256(make([]byte, 32)); !bytes.Equal(got, want) {
		t.Fatalf("keccak256 of zero word: have %x, want %x", got, want)
	}
}

func TestSponge(t *testing.T) {
	for _, n := range []int{32, 64} {
		h, err := NewSponge(n)
		if err != nil {
			t.Fatalf("sponge %d: %v", n, err)
		}
		if h.Size() != n {
			t.Errorf("sponge %d: size %d", n, h.Size())
		}
		a, _ := Sum(n, []byte("aqua"), []byte("hash"))
		b, _ := Sum(n, []byte("aquahash"))
		if !bytes.Equal(a, b) {
			t.Errorf("sponge %d: split absorb differs", n)
		}
	}
	if !bytes.Equal(mustSum(t, 64, []byte{1}), Keccak512([]byte{1})) {
		t.Error("Sum(64) differs from Keccak512")
	}
	for _, n := range []int{0, 16, 48, 128} {
		if _, err := NewSponge(n); !errors.Is(err, ErrUnsupportedLength) {
			t.Errorf("sponge %d: have %v, want ErrUnsupportedLength", n, err)
		}
	}
}

func mustSum(t *testing.T, n int, data []byte) []byte {
	out, err := Sum(n, data)
	if err != nil {
		t.Fatal(err)
	}
	return out
}
