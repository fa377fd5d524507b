package job

import (
	"context"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ZaninAndrea/compressor/internal/stream"
	"github.com/ZaninAndrea/compressor/pkg/containers"
)

type Options struct {
	// Concurrency caps the number of jobs running at once, <= 0 means no limit.
	Concurrency int
	// FailFast cancels the jobs that have not started yet after the first failure.
	FailFast bool
	Logger   *log.Logger
}

// RunAll runs jobs concurrently and returns one result per job, in the same
// order as jobs.
func RunAll(ctx context.Context, opener *stream.Opener, jobs []Job, opts Options) []containers.Result[Stats] {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	results := make([]containers.Result[Stats], len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = containers.Err[Stats](err)
				return nil
			}

			stats, err := Run(ctx, opener, j)
			results[i] = containers.NewResult(err, stats)
			if err != nil {
				logger.Printf("%s %s failed: %v", j.Op, j.Input, err)
				if opts.FailFast {
					return err
				}
				return nil
			}

			logger.Printf("%s %s: %d -> %d bytes in %s", j.Op, j.Input, stats.InBytes, stats.OutBytes, stats.Duration)
			return nil
		})
	}

	// Failures are reported per job through results.
	_ = g.Wait()

	return results
}
