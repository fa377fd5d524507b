package compression

import "errors"

// Decode failures. Details are attached with fmt.Errorf("%w: ...") so callers
// can branch with errors.Is. I/O errors from readers and writers are returned
// unchanged and are not part of this set.
var (
	ErrMalformedInput   = errors.New("malformed rle input: expected (count, value) pairs")
	ErrTruncatedLiteral = errors.New("truncated lz77 literal")
	ErrTruncatedMatch   = errors.New("truncated lz77 match")
	ErrInvalidDistance  = errors.New("invalid lz77 match distance")
	ErrUnknownToken     = errors.New("unknown lz77 token")
	ErrUnknownScheme    = errors.New("unknown compression scheme")
)
