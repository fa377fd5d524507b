package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ZaninAndrea/compressor/internal/job"
	"github.com/ZaninAndrea/compressor/internal/stream"
)

type testEnv struct {
	*environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(stdin []byte) *testEnv {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testEnv{
		environment: &environment{
			stdin:  bytes.NewReader(stdin),
			stdout: stdout,
			stderr: stderr,
			getenv: func(string) string { return "" },
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func TestCompressDecompressFiles(t *testing.T) {
	for _, algorithm := range []string{"--rle", "--lz", "--lz4", "--zstd"} {
		t.Run(algorithm, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "input.txt")
			compressed := filepath.Join(dir, "output.cmp")
			decompressed := filepath.Join(dir, "output.txt")
			if err := os.WriteFile(input, []byte("AAABBBCCCCCDDDDE ABABABABABAB"), 0644); err != nil {
				t.Fatal(err)
			}

			env := newTestEnv(nil)
			if code := run(context.Background(), []string{"compress", input, compressed, algorithm}, env.environment); code != 0 {
				t.Fatalf("compress exited with %d: %s", code, env.stderr.String())
			}
			if !strings.Contains(env.stderr.String(), "Compressed "+input+" to "+compressed) {
				t.Errorf("Missing confirmation message: %q", env.stderr.String())
			}

			// Flags before the positionals work too.
			env = newTestEnv(nil)
			if code := run(context.Background(), []string{"decompress", algorithm, compressed, decompressed}, env.environment); code != 0 {
				t.Fatalf("decompress exited with %d: %s", code, env.stderr.String())
			}

			original, _ := os.ReadFile(input)
			result, _ := os.ReadFile(decompressed)
			if !bytes.Equal(original, result) {
				t.Errorf("Round trip mismatch: %q", result)
			}
		})
	}
}

func TestCompressStdio(t *testing.T) {
	env := newTestEnv([]byte("ABABABABABAB"))
	if code := run(context.Background(), []string{"compress", "-", "-", "-scheme", "lz", "-chunked"}, env.environment); code != 0 {
		t.Fatalf("compress exited with %d: %s", code, env.stderr.String())
	}

	expected := []byte{0x00, 'A', 0x00, 'B', 0x01, 2, 10}
	if !bytes.Equal(env.stdout.Bytes(), expected) {
		t.Errorf("Expected %x, got %x", expected, env.stdout.Bytes())
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "NoArgs", args: []string{}, want: "Usage"},
		{name: "UnknownCommand", args: []string{"squash", "a", "b"}, want: "unknown command"},
		{name: "MissingAlgorithm", args: []string{"compress", "a", "b"}, want: "please specify a compression algorithm"},
		{name: "TwoAlgorithms", args: []string{"compress", "a", "b", "--rle", "--lz"}, want: "more than one algorithm"},
		{name: "MissingOutput", args: []string{"compress", "a", "--rle"}, want: "expects <input> <output>"},
		{name: "UnknownScheme", args: []string{"compress", "a", "b", "-scheme", "huffman"}, want: "unknown compression scheme"},
		{name: "BatchWithoutOutDir", args: []string{"batch", "-scheme", "lz", "a"}, want: "requires -out-dir"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(nil)
			if code := run(context.Background(), tc.args, env.environment); code != 1 {
				t.Errorf("Expected exit code 1, got %d", code)
			}
			if !strings.Contains(env.stderr.String(), tc.want) {
				t.Errorf("Expected %q in stderr, got %q", tc.want, env.stderr.String())
			}
		})
	}
}

func TestHelp(t *testing.T) {
	env := newTestEnv(nil)
	if code := run(context.Background(), []string{"help"}, env.environment); code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(env.stdout.String(), "compressor batch") {
		t.Errorf("Usage not printed: %q", env.stdout.String())
	}
}

func TestDecompressCorruptInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.cmp")
	output := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(input, []byte{0x01, 0x05, 0x01}, 0644); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv(nil)
	if code := run(context.Background(), []string{"decompress", input, output, "--lz"}, env.environment); code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(env.stderr.String(), "invalid lz77 match distance") {
		t.Errorf("Expected the decode error in stderr, got %q", env.stderr.String())
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected no output file, got %v", err)
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	for i, input := range inputs {
		if err := os.WriteFile(input, bytes.Repeat([]byte{'x' + byte(i)}, 1000), 0644); err != nil {
			t.Fatal(err)
		}
	}

	packed := filepath.Join(dir, "packed")
	env := newTestEnv(nil)
	args := append([]string{"batch", "-op", "compress", "--rle", "-out-dir", packed, "-jobs", "2"}, inputs...)
	if code := run(context.Background(), args, env.environment); code != 0 {
		t.Fatalf("batch exited with %d: %s", code, env.stderr.String())
	}
	if !strings.Contains(env.stdout.String(), "ratio") {
		t.Errorf("Expected a stats table, got %q", env.stdout.String())
	}

	unpacked := filepath.Join(dir, "unpacked")
	env = newTestEnv(nil)
	args = []string{"batch", "-op", "decompress", "--rle", "-out-dir", unpacked,
		filepath.Join(packed, "a.txt.cmp"), filepath.Join(packed, "b.txt.cmp")}
	if code := run(context.Background(), args, env.environment); code != 0 {
		t.Fatalf("batch exited with %d: %s", code, env.stderr.String())
	}

	for _, input := range inputs {
		original, _ := os.ReadFile(input)
		result, err := os.ReadFile(filepath.Join(unpacked, filepath.Base(input)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(original, result) {
			t.Errorf("%s: round trip mismatch", input)
		}
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.txt")
	chart := filepath.Join(dir, "ratios.svg")
	if err := os.WriteFile(input, bytes.Repeat([]byte("abcabcabc "), 100), 0644); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv(nil)
	if code := run(context.Background(), []string{"stats", "-chart", chart, input}, env.environment); code != 0 {
		t.Fatalf("stats exited with %d: %s", code, env.stderr.String())
	}

	for _, scheme := range []string{"rle", "lz", "lz4", "zstd"} {
		if !strings.Contains(env.stdout.String(), scheme) {
			t.Errorf("Expected %s in the table, got %q", scheme, env.stdout.String())
		}
	}

	svg, err := os.ReadFile(chart)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("Expected an SVG chart")
	}
}

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestCompressToS3(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	env := newTestEnv([]byte("AAAA"))
	env.getenv = func(key string) string {
		if key == envAccessKey {
			return "access"
		}
		return ""
	}

	var gotConfig stream.S3Config
	env.newStore = func(ctx context.Context, cfg stream.S3Config) (stream.ObjectStore, error) {
		gotConfig = cfg
		return store, nil
	}

	args := []string{"compress", "-", "s3://bucket/out.cmp", "--rle", "-s3-region", "eu-south-1", "-s3-path-style"}
	if code := run(context.Background(), args, env.environment); code != 0 {
		t.Fatalf("compress exited with %d: %s", code, env.stderr.String())
	}

	if !bytes.Equal(store.objects["bucket/out.cmp"], []byte{4, 'A'}) {
		t.Errorf("Unexpected object content: %x", store.objects["bucket/out.cmp"])
	}
	if gotConfig.Region != "eu-south-1" || !gotConfig.PathStyle || gotConfig.AccessKey != "access" {
		t.Errorf("S3 flags not forwarded: %+v", gotConfig)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		op       job.Op
		input    string
		expected string
	}{
		{job.OpCompress, "dir/a.txt", "a.txt.cmp"},
		{job.OpDecompress, "dir/a.txt.cmp", "a.txt"},
		{job.OpDecompress, "dir/a.bin", "a.bin.out"},
		{job.OpDecompress, ".cmp", ".cmp.out"},
		{job.OpCompress, "s3://bucket/logs/x.log", "x.log.cmp"},
	}

	for _, tc := range tests {
		if got := outputName(tc.op, tc.input); got != tc.expected {
			t.Errorf("outputName(%s, %q) = %q, expected %q", tc.op, tc.input, got, tc.expected)
		}
	}

	if got := joinLocation("s3://bucket/prefix/", "a.cmp"); got != "s3://bucket/prefix/a.cmp" {
		t.Errorf("Unexpected s3 join: %q", got)
	}
}
