package common

import "testing"

func TestHexToHash(t *testing.T) {
	h := HexToHash("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563")
	if h[0] != 0x29 || h[31] != 0x63 {
		t.Fatalf("bad decode: %x", h)
	}
	if got := h.Hex(); got != "0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563" {
		t.Fatalf("round trip: %s", got)
	}
}

func TestBytesToHashCrop(t *testing.T) {
	b := make([]byte, 40)
	b[8] = 0xaa
	if h := BytesToHash(b); h[0] != 0xaa {
		t.Fatalf("expected left crop, have %x", h)
	}
	if h := BytesToHash([]byte{1}); h[31] != 1 {
		t.Fatalf("expected right alignment, have %x", h)
	}
	if h := HexToHash("0x1"); h[31] != 1 {
		t.Fatalf("odd length hex: %x", h)
	}
	if FromHex("zz") != nil {
		t.Fatal("invalid hex decoded")
	}
}
