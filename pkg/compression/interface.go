package compression

// Encoder consumes values in arbitrary chunks. Encode returns the output that
// is already final, Flush returns whatever was held back and resets the state.
type Encoder[T any] interface {
	Encode(values []T) []byte
	Flush() []byte
}

// Decoder is the inverse of Encoder. Partial tokens are kept between calls,
// Flush reports an error if the input ended in the middle of one.
type Decoder[T any] interface {
	Decode(encoded []byte) ([]T, error)
	Flush() ([]T, error)
}

// Codec transforms a whole buffer at once.
type Codec interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// Chunked is implemented by codecs that can also run incrementally.
type Chunked interface {
	NewEncoder() Encoder[byte]
	NewDecoder() Decoder[byte]
}
