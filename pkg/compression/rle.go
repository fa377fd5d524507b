package compression

import "fmt"

// MaxRunLength is the largest count a single (count, value) pair can hold.
const MaxRunLength = 255

// EncodeRLE encodes raw as a sequence of (count, value) pairs.
// Runs longer than MaxRunLength are split into several pairs.
func EncodeRLE(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte{}
	}

	enc := RLEEncoder{}
	encoded := enc.Encode(raw)
	return append(encoded, enc.Flush()...)
}

// DecodeRLE expands a sequence of (count, value) pairs.
func DecodeRLE(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 {
		return []byte{}, nil
	}

	if len(encoded)%2 != 0 {
		return nil, fmt.Errorf("%w: length %d is odd", ErrMalformedInput, len(encoded))
	}

	// Size the output up front, a pair never expands to more than 255 bytes.
	size := 0
	for i := 0; i < len(encoded); i += 2 {
		size += int(encoded[i])
	}

	decoded := make([]byte, 0, size)
	for i := 0; i < len(encoded); i += 2 {
		decoded = appendRun(decoded, encoded[i], encoded[i+1])
	}

	return decoded, nil
}

func appendRun(dst []byte, count, value byte) []byte {
	for j := 0; j < int(count); j++ {
		dst = append(dst, value)
	}
	return dst
}

// RLEEncoder is the incremental form of EncodeRLE. The open run is carried
// across calls, so the output does not depend on how the input is chunked.
type RLEEncoder struct {
	value byte
	count int
}

func (e *RLEEncoder) Encode(values []byte) []byte {
	encoded := make([]byte, 0, 2*len(values)/MaxRunLength+2)

	for _, b := range values {
		if e.count > 0 && b == e.value && e.count < MaxRunLength {
			e.count++
			continue
		}

		if e.count > 0 {
			encoded = append(encoded, byte(e.count), e.value)
		}
		e.value = b
		e.count = 1
	}

	return encoded
}

func (e *RLEEncoder) Flush() []byte {
	if e.count == 0 {
		return []byte{}
	}

	encoded := []byte{byte(e.count), e.value}
	e.value = 0
	e.count = 0
	return encoded
}

// RLEDecoder is the incremental form of DecodeRLE.
type RLEDecoder struct {
	count      byte
	hasPending bool
	consumed   int
}

func (d *RLEDecoder) Decode(encoded []byte) ([]byte, error) {
	decoded := []byte{}

	for _, b := range encoded {
		d.consumed++
		if !d.hasPending {
			d.count = b
			d.hasPending = true
			continue
		}

		decoded = appendRun(decoded, d.count, b)
		d.hasPending = false
	}

	return decoded, nil
}

func (d *RLEDecoder) Flush() ([]byte, error) {
	consumed := d.consumed
	pending := d.hasPending
	*d = RLEDecoder{}

	if pending {
		return nil, fmt.Errorf("%w: length %d is odd", ErrMalformedInput, consumed)
	}

	return []byte{}, nil
}

type rleCodec struct{}

func (rleCodec) Compress(src []byte) ([]byte, error)   { return EncodeRLE(src), nil }
func (rleCodec) Decompress(src []byte) ([]byte, error) { return DecodeRLE(src) }
func (rleCodec) NewEncoder() Encoder[byte]             { return &RLEEncoder{} }
func (rleCodec) NewDecoder() Decoder[byte]             { return &RLEDecoder{} }
