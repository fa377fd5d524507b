/*
Package compression implements two small byte codecs and a registry that also
exposes LZ4 and Zstandard for comparison.

RLE format: a sequence of [count][value] pairs, count in 1..255. Longer runs
are split into several pairs.

LZ77 format: a sequence of tokens, each starting with a tag byte.
  - [0x00][byte]: literal.
  - [0x01][distance][length]: copy length bytes starting distance bytes back
    in the output. Length may exceed distance, the copy then repeats the
    last distance bytes.

The encoder searches the last WindowSize (20) bytes for the longest match and
emits it when it is at least MinMatchLength (3) bytes long.

Use EncodeRLE/DecodeRLE and EncodeLZ77/DecodeLZ77 on whole buffers, or
RLEEncoder, RLEDecoder, LZ77Encoder and LZ77Decoder to process input in
chunks. Both forms produce identical bytes.

	encoded := compression.EncodeLZ77(data)
	decoded, err := compression.DecodeLZ77(encoded)
	if errors.Is(err, compression.ErrInvalidDistance) {
		// corrupt input
	}
*/
package compression
