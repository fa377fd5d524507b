package compression

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec shares one encoder and one decoder between calls, EncodeAll and
// DecodeAll are safe for concurrent use.
type zstdCodec struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	err     error
}

func (c *zstdCodec) init() error {
	c.once.Do(func() {
		c.encoder, c.err = zstd.NewWriter(nil)
		if c.err != nil {
			return
		}
		c.decoder, c.err = zstd.NewReader(nil)
	})
	return c.err
}

func (c *zstdCodec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	if err := c.init(); err != nil {
		return nil, err
	}

	return c.encoder.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

func (c *zstdCodec) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	if err := c.init(); err != nil {
		return nil, err
	}

	return c.decoder.DecodeAll(src, nil)
}
