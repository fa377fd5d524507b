package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaninAndrea/compressor/internal/stream"
	"github.com/ZaninAndrea/compressor/pkg/compression"
)

var ErrChunkedUnsupported = errors.New("scheme does not support chunked mode")
var ErrUnknownOp = errors.New("unknown operation, expected compress or decompress")

type Op string

const (
	OpCompress   Op = "compress"
	OpDecompress Op = "decompress"
)

func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpCompress, OpDecompress:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
}

// Job is a single compress or decompress invocation. An empty Output
// discards the result, which is useful to measure ratios.
type Job struct {
	Op      Op
	Scheme  string
	Input   string
	Output  string
	Chunked bool
}

type Stats struct {
	Job      Job
	InBytes  int64
	OutBytes int64
	Duration time.Duration
}

// Ratio is OutBytes/InBytes, 0 for an empty input.
func (s Stats) Ratio() float64 {
	if s.InBytes == 0 {
		return 0
	}
	return float64(s.OutBytes) / float64(s.InBytes)
}

// Run executes job. In the default mode the whole input is transformed in
// memory and the output is only created once that succeeded, so a corrupt
// input never leaves a partial file behind. Chunked mode streams instead.
func Run(ctx context.Context, opener *stream.Opener, job Job) (Stats, error) {
	start := time.Now()
	stats := Stats{Job: job}

	codec, err := compression.Lookup(job.Scheme)
	if err != nil {
		return stats, err
	}

	if _, err := ParseOp(string(job.Op)); err != nil {
		return stats, err
	}

	in, err := opener.Open(ctx, job.Input)
	if err != nil {
		return stats, fmt.Errorf("open input %q: %w", job.Input, err)
	}
	defer in.Close()

	counter := stream.NewCountingReader(in)

	if job.Chunked {
		stats.OutBytes, err = runChunked(ctx, opener, job, codec, counter)
	} else {
		stats.OutBytes, err = runBuffered(ctx, opener, job, codec, counter)
	}
	stats.InBytes = counter.Count()
	stats.Duration = time.Since(start)

	return stats, err
}

func runBuffered(ctx context.Context, opener *stream.Opener, job Job, codec compression.Codec, in io.Reader) (int64, error) {
	src, err := io.ReadAll(in)
	if err != nil {
		return 0, fmt.Errorf("read input %q: %w", job.Input, err)
	}

	transform := codec.Compress
	if job.Op == OpDecompress {
		transform = codec.Decompress
	}

	out, err := transform(src)
	if err != nil {
		return 0, fmt.Errorf("%s %s %q: %w", job.Scheme, job.Op, job.Input, err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if job.Output == "" {
		return int64(len(out)), nil
	}

	return writeOutput(ctx, opener, job.Output, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	})
}

func runChunked(ctx context.Context, opener *stream.Opener, job Job, codec compression.Codec, in io.Reader) (int64, error) {
	chunked, ok := codec.(compression.Chunked)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrChunkedUnsupported, job.Scheme)
	}

	pumpTo := func(w io.Writer) error {
		var err error
		if job.Op == OpCompress {
			err = compression.PumpEncoder(chunked.NewEncoder(), in, w, compression.DefaultChunkSize)
		} else {
			err = compression.PumpDecoder(chunked.NewDecoder(), in, w, compression.DefaultChunkSize)
		}
		if err != nil {
			return fmt.Errorf("%s %s %q: %w", job.Scheme, job.Op, job.Input, err)
		}
		return nil
	}

	if job.Output == "" {
		counter := stream.NewCountingWriter(io.Discard)
		err := pumpTo(counter)
		return counter.Count(), err
	}

	return writeOutput(ctx, opener, job.Output, pumpTo)
}

func writeOutput(ctx context.Context, opener *stream.Opener, location string, write func(io.Writer) error) (int64, error) {
	out, err := opener.Create(ctx, location)
	if err != nil {
		return 0, fmt.Errorf("create output %q: %w", location, err)
	}

	counter := stream.NewCountingWriter(out)
	if err := write(counter); err != nil {
		out.Close()
		return counter.Count(), err
	}

	if err := out.Close(); err != nil {
		return counter.Count(), fmt.Errorf("close output %q: %w", location, err)
	}

	return counter.Count(), nil
}
