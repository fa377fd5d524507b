package compression

import (
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by PumpEncoder and PumpDecoder.
const DefaultChunkSize = 32 * 1024

// RLECompress reads all of r and writes its RLE encoding to w.
func RLECompress(r io.Reader, w io.Writer) error { return CompressStream(rleCodec{}, r, w) }

// RLEDecompress reads an RLE stream from r and writes the decoded bytes to w.
func RLEDecompress(r io.Reader, w io.Writer) error { return DecompressStream(rleCodec{}, r, w) }

// LZCompress reads all of r and writes its LZ77 encoding to w.
func LZCompress(r io.Reader, w io.Writer) error { return CompressStream(lz77Codec{}, r, w) }

// LZDecompress reads an LZ77 stream from r and writes the decoded bytes to w.
func LZDecompress(r io.Reader, w io.Writer) error { return DecompressStream(lz77Codec{}, r, w) }

// CompressStream buffers the whole input, compresses it and writes the result
// with a single call to w. Read and write errors are returned as is.
func CompressStream(c Codec, r io.Reader, w io.Writer) error {
	return transformStream(c.Compress, r, w)
}

// DecompressStream is the inverse of CompressStream. Nothing is written to w
// if the input fails to decode.
func DecompressStream(c Codec, r io.Reader, w io.Writer) error {
	return transformStream(c.Decompress, r, w)
}

func transformStream(transform func([]byte) ([]byte, error), r io.Reader, w io.Writer) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	out, err := transform(src)
	if err != nil {
		return err
	}

	if len(out) == 0 {
		return nil
	}

	_, err = w.Write(out)
	return err
}

// PumpEncoder feeds r to enc in chunks of chunkSize bytes and writes the
// output to w as it becomes available.
func PumpEncoder(enc Encoder[byte], r io.Reader, w io.Writer, chunkSize int) error {
	return pump(r, w, chunkSize,
		func(p []byte) ([]byte, error) { return enc.Encode(p), nil },
		func() ([]byte, error) { return enc.Flush(), nil },
	)
}

// PumpDecoder feeds r to dec in chunks of chunkSize bytes. Output already
// written to w is not retracted when a later chunk fails to decode.
func PumpDecoder(dec Decoder[byte], r io.Reader, w io.Writer, chunkSize int) error {
	return pump(r, w, chunkSize, dec.Decode, dec.Flush)
}

func pump(r io.Reader, w io.Writer, chunkSize int, step func([]byte) ([]byte, error), flush func() ([]byte, error)) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	write := func(p []byte) error {
		if len(p) == 0 {
			return nil
		}
		_, err := w.Write(p)
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			out, err := step(buf[:n])
			if err != nil {
				return err
			}
			if err := write(out); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		} else if readErr != nil {
			return readErr
		}
	}

	out, err := flush()
	if err != nil {
		return err
	}
	return write(out)
}
