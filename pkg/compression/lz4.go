package compression

import (
	"bytes"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec wraps the LZ4 frame format. It is only used as a baseline to
// compare the rle and lz schemes against.
type lz4Codec struct{}

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	buffer := bytes.NewBuffer(make([]byte, 0, len(src)/2))
	compressedWriter := lz4.NewWriter(buffer)

	_, err := compressedWriter.Write(src)
	if err != nil {
		return nil, err
	}

	err = compressedWriter.Close()
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func (lz4Codec) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	compressedReader := lz4.NewReader(bytes.NewReader(src))

	buffer := bytes.NewBuffer(nil)
	_, err := compressedReader.WriteTo(buffer)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
