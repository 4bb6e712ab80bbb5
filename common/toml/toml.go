// Package toml reads and writes the TOML configuration files of aquahash.
package toml

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// DecodeStrict decodes r into v, rejecting keys that v has no field for.
func DecodeStrict(r io.Reader, v any) error {
	md, err := toml.NewDecoder(r).Decode(v)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown field %s", strings.Join(keys, ", "))
	}
	return nil
}

// Encode writes v as TOML with two space indentation.
func Encode(w io.Writer, v any) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	return enc.Encode(v)
}
