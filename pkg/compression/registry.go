package compression

import (
	"fmt"
	"slices"
	"strings"
)

// Registered scheme names.
const (
	SchemeRLE  = "rle"
	SchemeLZ   = "lz"
	SchemeLZ4  = "lz4"
	SchemeZstd = "zstd"
)

var schemes = map[string]Codec{
	SchemeRLE:  rleCodec{},
	SchemeLZ:   lz77Codec{},
	SchemeLZ4:  lz4Codec{},
	SchemeZstd: &zstdCodec{},
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	codec, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScheme, name, strings.Join(Schemes(), ", "))
	}

	return codec, nil
}

// Schemes returns the registered scheme names in sorted order.
func Schemes() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
