// compressor - RLE / LZ77 file compression tool
//
// Usage:
//
//	compressor compress <input|-> <output|-> --rle|--lz|--lz4|--zstd
//	compressor decompress <input|-> <output|-> --rle|--lz|--lz4|--zstd
//	compressor batch -op compress|decompress -scheme lz -out-dir dir files...
//	compressor stats [-chart ratios.png] files...
//	compressor help
//
// Inputs and outputs can be local paths, "-" for stdin/stdout or
// s3://bucket/key objects.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ZaninAndrea/compressor/internal/job"
	"github.com/ZaninAndrea/compressor/internal/report"
	"github.com/ZaninAndrea/compressor/internal/stream"
	"github.com/ZaninAndrea/compressor/pkg/compression"
	"github.com/ZaninAndrea/compressor/pkg/containers"
)

const (
	compressedSuffix = ".cmp"

	envAccessKey = "COMPRESSOR_S3_ACCESS_KEY"
	envSecretKey = "COMPRESSOR_S3_SECRET_KEY"
)

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	env := &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}

	code := run(ctx, os.Args[1:], env)
	cancel()
	os.Exit(code)
}

type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// newStore builds the S3 client, replaced in tests.
	newStore func(ctx context.Context, cfg stream.S3Config) (stream.ObjectStore, error)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, env *environment) int {
	logger := log.New(env.stderr, "compressor: ", 0)

	if len(args) < 1 {
		printUsage(env.stderr)
		return 1
	}

	var err error
	switch cmd := args[0]; cmd {
	case "compress", "decompress":
		err = cmdTransform(ctx, job.Op(cmd), args[1:], env, logger)
	case "batch":
		err = cmdBatch(ctx, args[1:], env, logger)
	case "stats":
		err = cmdStats(ctx, args[1:], env, logger)
	case "help", "-h", "--help":
		printUsage(env.stdout)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		logger.Print(err)
		printUsage(env.stderr)
		return 1
	default:
		logger.Printf("error: %v", err)
		return 1
	}
}

// schemeFlags collects -scheme and the --rle/--lz/... shorthands.
type schemeFlags struct {
	scheme    string
	shorthand map[string]*bool
}

func addSchemeFlags(fs *flag.FlagSet) *schemeFlags {
	sf := &schemeFlags{shorthand: map[string]*bool{}}
	fs.StringVar(&sf.scheme, "scheme", "", "compression scheme: "+strings.Join(compression.Schemes(), ", "))
	for _, name := range compression.Schemes() {
		sf.shorthand[name] = fs.Bool(name, false, "shorthand for -scheme "+name)
	}
	return sf
}

func (sf *schemeFlags) resolve() (string, error) {
	selected := []string{}
	if sf.scheme != "" {
		selected = append(selected, strings.ToLower(sf.scheme))
	}
	for name, set := range sf.shorthand {
		if *set && !containsString(selected, name) {
			selected = append(selected, name)
		}
	}

	switch len(selected) {
	case 0:
		return "", fmt.Errorf("%w: please specify a compression algorithm (--rle or --lz)", errUsage)
	case 1:
		if _, err := compression.Lookup(selected[0]); err != nil {
			return "", err
		}
		return selected[0], nil
	default:
		return "", fmt.Errorf("%w: more than one algorithm selected", errUsage)
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func addS3Flags(fs *flag.FlagSet, env *environment) *stream.S3Config {
	cfg := &stream.S3Config{
		AccessKey: env.getenv(envAccessKey),
		SecretKey: env.getenv(envSecretKey),
	}
	fs.StringVar(&cfg.Region, "s3-region", "", "AWS region for s3:// locations")
	fs.StringVar(&cfg.Profile, "s3-profile", "", "shared config profile for s3:// locations")
	fs.StringVar(&cfg.Endpoint, "s3-endpoint", "", "custom S3 endpoint, e.g. http://localhost:9000")
	fs.BoolVar(&cfg.PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	return cfg
}

// parseInterleaved parses flags that may appear before, between or after the
// positional arguments, as in "compress in.txt out.cmp --rle".
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	positional := []string{}
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}

		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newOpener(ctx context.Context, env *environment, cfg *stream.S3Config, locations ...string) (*stream.Opener, error) {
	opener := &stream.Opener{Stdin: env.stdin, Stdout: env.stdout}
	if !stream.IsS3(locations...) {
		return opener, nil
	}

	newStore := env.newStore
	if newStore == nil {
		newStore = func(ctx context.Context, cfg stream.S3Config) (stream.ObjectStore, error) {
			return stream.NewS3Client(ctx, cfg)
		}
	}

	store, err := newStore(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("configure s3: %w", err)
	}
	opener.Store = store

	return opener, nil
}

func cmdTransform(ctx context.Context, op job.Op, args []string, env *environment, logger *log.Logger) error {
	fs := flag.NewFlagSet(string(op), flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	schemes := addSchemeFlags(fs)
	chunked := fs.Bool("chunked", false, "process the input incrementally instead of buffering it (rle and lz only)")
	verbose := fs.Bool("v", false, "log progress to stderr")
	s3cfg := addS3Flags(fs, env)

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("%w: %s expects <input> <output>", errUsage, op)
	}

	scheme, err := schemes.resolve()
	if err != nil {
		return err
	}

	input, output := positional[0], positional[1]
	opener, err := newOpener(ctx, env, s3cfg, input, output)
	if err != nil {
		return err
	}

	if *verbose {
		logger.Printf("starting %s %s of %s", scheme, op, input)
	}

	stats, err := job.Run(ctx, opener, job.Job{Op: op, Scheme: scheme, Input: input, Output: output, Chunked: *chunked})
	if err != nil {
		return err
	}

	if *verbose {
		logger.Printf("read %d bytes, wrote %d bytes in %s", stats.InBytes, stats.OutBytes, stats.Duration)
	}

	verb := "Compressed"
	if op == job.OpDecompress {
		verb = "Decompressed"
	}
	fmt.Fprintf(env.stderr, "%s %s to %s\n", verb, input, output)

	return nil
}

// outputName maps an input location to its name inside the output folder.
func outputName(op job.Op, input string) string {
	base := path.Base(input)
	if !stream.IsS3(input) {
		base = filepath.Base(input)
	}

	if op == job.OpCompress {
		return base + compressedSuffix
	}
	if trimmed, ok := strings.CutSuffix(base, compressedSuffix); ok && trimmed != "" {
		return trimmed
	}
	return base + ".out"
}

func joinLocation(dir, name string) string {
	if stream.IsS3(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

func cmdBatch(ctx context.Context, args []string, env *environment, logger *log.Logger) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	opName := fs.String("op", string(job.OpCompress), "operation: compress or decompress")
	schemes := addSchemeFlags(fs)
	outDir := fs.String("out-dir", "", "folder (or s3://bucket/prefix) receiving the outputs")
	jobs := fs.Int("jobs", runtime.NumCPU(), "number of files processed concurrently")
	failFast := fs.Bool("fail-fast", false, "stop starting new files after the first failure")
	chunked := fs.Bool("chunked", false, "process inputs incrementally (rle and lz only)")
	verbose := fs.Bool("v", false, "log progress to stderr")
	s3cfg := addS3Flags(fs, env)

	inputs, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: batch expects at least one input", errUsage)
	}
	if *outDir == "" {
		return fmt.Errorf("%w: batch requires -out-dir", errUsage)
	}

	op, err := job.ParseOp(*opName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	scheme, err := schemes.resolve()
	if err != nil {
		return err
	}

	batch := make([]job.Job, 0, len(inputs))
	for _, input := range inputs {
		batch = append(batch, job.Job{
			Op:      op,
			Scheme:  scheme,
			Input:   input,
			Output:  joinLocation(*outDir, outputName(op, input)),
			Chunked: *chunked,
		})
	}

	opener, err := newOpener(ctx, env, s3cfg, append(inputs, *outDir)...)
	if err != nil {
		return err
	}

	opts := job.Options{Concurrency: *jobs, FailFast: *failFast}
	if *verbose {
		opts.Logger = logger
	}

	stats, err := containers.Partition(job.RunAll(ctx, opener, batch, opts))
	if tableErr := report.WriteTable(env.stdout, stats); tableErr != nil {
		return tableErr
	}

	return err
}

func cmdStats(ctx context.Context, args []string, env *environment, logger *log.Logger) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	chartPath := fs.String("chart", "", "also render a bar chart (.png or .svg) to this location")
	jobs := fs.Int("jobs", runtime.NumCPU(), "number of measurements run concurrently")
	verbose := fs.Bool("v", false, "log progress to stderr")
	s3cfg := addS3Flags(fs, env)

	inputs, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: stats expects at least one input", errUsage)
	}

	measurements := []job.Job{}
	for _, input := range inputs {
		for _, scheme := range compression.Schemes() {
			measurements = append(measurements, job.Job{Op: job.OpCompress, Scheme: scheme, Input: input})
		}
	}

	opener, err := newOpener(ctx, env, s3cfg, append(inputs, *chartPath)...)
	if err != nil {
		return err
	}

	opts := job.Options{Concurrency: *jobs}
	if *verbose {
		opts.Logger = logger
	}

	stats, runErr := containers.Partition(job.RunAll(ctx, opener, measurements, opts))
	if err := report.WriteTable(env.stdout, stats); err != nil {
		return err
	}

	if *chartPath != "" && len(stats) > 0 {
		out, err := opener.Create(ctx, *chartPath)
		if err != nil {
			return fmt.Errorf("create chart %q: %w", *chartPath, err)
		}
		if err := report.WriteChart(out, stats, report.ChartFormat(*chartPath)); err != nil {
			out.Close()
			return fmt.Errorf("render chart: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close chart %q: %w", *chartPath, err)
		}
	}

	return runErr
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  compressor [compress|decompress] [input_file|-] [output_file|-] [--rle|--lz|--lz4|--zstd]
  compressor batch -op compress|decompress -scheme NAME -out-dir DIR [-jobs N] [-fail-fast] files...
  compressor stats [-chart ratios.png] files...
  compressor help

Locations can be local paths, "-" for stdin/stdout, or s3://bucket/key.
Schemes: %s

Example: compressor compress input.txt output.txt.cmp --rle
`, strings.Join(compression.Schemes(), ", "))
}
