package resource

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed strings_en.toml
var englishStrings string

// Strings - Text drawn by scripts, keyed by string id.
type Strings map[uint16]string

type stringsFile struct {
	Strings map[string]string `toml:"strings"`
}

func decodeStrings(r io.Reader) (Strings, error) {
	var f stringsFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}

	out := make(Strings, len(f.Strings))
	for k, v := range f.Strings {
		id, err := strconv.ParseUint(k, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("string id %q: %w", k, err)
		}
		out[uint16(id)] = v
	}
	return out, nil
}

func EnglishStrings() Strings {
	s, err := decodeStrings(strings.NewReader(englishStrings))
	if err != nil {
		panic(fmt.Sprintf("embedded string table: %v", err))
	}
	return s
}

// WithOverrides - Copy of s with the entries of a TOML string file applied
// on top.
func (s Strings) WithOverrides(r io.Reader) (Strings, error) {
	extra, err := decodeStrings(r)
	if err != nil {
		return nil, err
	}
	out := maps.Clone(s)
	if out == nil {
		out = Strings{}
	}
	maps.Copy(out, extra)
	return out, nil
}

func (s Strings) Lookup(id uint16) (string, bool) {
	str, ok := s[id]
	return str, ok
}
