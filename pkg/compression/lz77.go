package compression

import "fmt"

// LZ77 format constants.
const (
	WindowSize     = 20  // How far back the encoder looks for a match.
	MaxMatchLength = 255 // Match length is stored in one byte.
	MinMatchLength = 3   // Shorter matches cost as much as the literals they replace.

	TagLiteral byte = 0x00 // [0x00][byte]
	TagMatch   byte = 0x01 // [0x01][distance][length]
)

// EncodeLZ77 encodes raw as a stream of literal and match tokens.
func EncodeLZ77(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte{}
	}

	encoded, _ := encodeLZ77Tokens(make([]byte, 0, 2*len(raw)), raw, 0, len(raw))
	return encoded
}

// encodeLZ77Tokens appends the tokens for src[pos:end] to dst. Match search
// reads src up to len(src), so callers streaming the input must keep at least
// MaxMatchLength bytes of lookahead after end. It returns the position where
// encoding stopped, which can exceed end when the last match runs past it.
func encodeLZ77Tokens(dst, src []byte, pos, end int) ([]byte, int) {
	for pos < end {
		bestLen, bestDistance := longestMatch(src, pos)

		if bestLen >= MinMatchLength {
			dst = append(dst, TagMatch, byte(bestDistance), byte(bestLen))
			pos += bestLen
		} else {
			dst = append(dst, TagLiteral, src[pos])
			pos++
		}
	}

	return dst, pos
}

// longestMatch scans the window oldest first and only replaces the best
// candidate on a strictly longer match, so among equal lengths the oldest
// offset (the largest distance) wins. Existing streams depend on this order.
func longestMatch(src []byte, pos int) (int, int) {
	bestLen, bestDistance := 0, 0

	for offset := max(0, pos-WindowSize); offset < pos; offset++ {
		length := 0
		for pos+length < len(src) && length < MaxMatchLength && src[offset+length] == src[pos+length] {
			length++
		}

		if length > bestLen {
			bestLen = length
			bestDistance = pos - offset
		}
	}

	return bestLen, bestDistance
}

// DecodeLZ77 decodes a literal/match token stream.
func DecodeLZ77(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 {
		return []byte{}, nil
	}

	decoded := make([]byte, 0, len(encoded))
	pos := 0
	for pos < len(encoded) {
		tag := encoded[pos]

		switch tag {
		case TagLiteral:
			if pos+1 >= len(encoded) {
				return nil, fmt.Errorf("%w: missing byte after tag at offset %d", ErrTruncatedLiteral, pos)
			}
			decoded = append(decoded, encoded[pos+1])
			pos += 2
		case TagMatch:
			if pos+2 >= len(encoded) {
				return nil, fmt.Errorf("%w: need 2 bytes after tag at offset %d, have %d", ErrTruncatedMatch, pos, len(encoded)-pos-1)
			}

			var err error
			decoded, err = appendMatch(decoded, int(encoded[pos+1]), int(encoded[pos+2]), pos)
			if err != nil {
				return nil, err
			}
			pos += 3
		default:
			return nil, fmt.Errorf("%w: tag 0x%02x at offset %d", ErrUnknownToken, tag, pos)
		}
	}

	return decoded, nil
}

// appendMatch copies length bytes starting distance bytes back from the end
// of out. Source and destination overlap when distance < length, so the copy
// goes one byte at a time and each written byte is visible to the next read.
func appendMatch(out []byte, distance, length, tokenOffset int) ([]byte, error) {
	if distance == 0 || distance > len(out) {
		return nil, fmt.Errorf("%w: distance %d with %d bytes of output at offset %d", ErrInvalidDistance, distance, len(out), tokenOffset)
	}

	start := len(out) - distance
	for i := 0; i < length; i++ {
		out = append(out, out[start+i])
	}

	return out, nil
}

// LZ77Encoder is the incremental form of EncodeLZ77. It keeps the last
// WindowSize bytes as match history and holds back input until it has
// MaxMatchLength bytes of lookahead, so tokens match EncodeLZ77 exactly.
type LZ77Encoder struct {
	buf []byte
	pos int
}

func (e *LZ77Encoder) Encode(values []byte) []byte {
	e.buf = append(e.buf, values...)

	end := len(e.buf) - MaxMatchLength
	if e.pos >= end {
		return []byte{}
	}

	var encoded []byte
	encoded, e.pos = encodeLZ77Tokens(make([]byte, 0, 2*(end-e.pos)), e.buf, e.pos, end)
	e.compact()

	return encoded
}

func (e *LZ77Encoder) Flush() []byte {
	encoded, _ := encodeLZ77Tokens([]byte{}, e.buf, e.pos, len(e.buf))
	e.buf = nil
	e.pos = 0
	return encoded
}

// compact drops bytes that fell out of the window.
func (e *LZ77Encoder) compact() {
	drop := e.pos - WindowSize
	if drop <= 0 {
		return
	}

	n := copy(e.buf, e.buf[drop:])
	e.buf = e.buf[:n]
	e.pos -= drop
}

// LZ77Decoder is the incremental form of DecodeLZ77. It keeps the last
// MaxMatchLength bytes of output, enough for any one-byte distance.
type LZ77Decoder struct {
	history  []byte
	pending  []byte
	produced int
	consumed int
}

func (d *LZ77Decoder) Decode(encoded []byte) ([]byte, error) {
	input := append(d.pending, encoded...)
	d.pending = nil

	out := append([]byte{}, d.history...)
	base := len(out)

	pos := 0
	for pos < len(input) {
		tag := input[pos]
		offset := d.consumed + pos

		var size int
		switch tag {
		case TagLiteral:
			size = 2
		case TagMatch:
			size = 3
		default:
			return nil, fmt.Errorf("%w: tag 0x%02x at offset %d", ErrUnknownToken, tag, offset)
		}

		if pos+size > len(input) {
			d.pending = append([]byte{}, input[pos:]...)
			break
		}

		if tag == TagLiteral {
			out = append(out, input[pos+1])
		} else {
			// The history window is truncated, so check against everything
			// produced so far rather than len(out).
			distance := int(input[pos+1])
			if distance > d.produced+len(out)-base {
				return nil, fmt.Errorf("%w: distance %d with %d bytes of output at offset %d", ErrInvalidDistance, distance, d.produced+len(out)-base, offset)
			}

			var err error
			out, err = appendMatch(out, distance, int(input[pos+2]), offset)
			if err != nil {
				return nil, err
			}
		}
		pos += size
	}

	d.consumed += pos
	decoded := append([]byte{}, out[base:]...)
	d.produced += len(decoded)

	if len(out) > MaxMatchLength {
		out = out[len(out)-MaxMatchLength:]
	}
	d.history = append(d.history[:0], out...)

	return decoded, nil
}

func (d *LZ77Decoder) Flush() ([]byte, error) {
	pending := d.pending
	offset := d.consumed
	*d = LZ77Decoder{}

	if len(pending) == 0 {
		return []byte{}, nil
	}

	if pending[0] == TagLiteral {
		return nil, fmt.Errorf("%w: missing byte after tag at offset %d", ErrTruncatedLiteral, offset)
	}
	return nil, fmt.Errorf("%w: need 2 bytes after tag at offset %d, have %d", ErrTruncatedMatch, offset, len(pending)-1)
}

type lz77Codec struct{}

func (lz77Codec) Compress(src []byte) ([]byte, error)   { return EncodeLZ77(src), nil }
func (lz77Codec) Decompress(src []byte) ([]byte, error) { return DecodeLZ77(src) }
func (lz77Codec) NewEncoder() Encoder[byte]             { return &LZ77Encoder{} }
func (lz77Codec) NewDecoder() Decoder[byte]             { return &LZ77Decoder{} }
