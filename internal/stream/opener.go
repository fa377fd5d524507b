package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNoObjectStore = errors.New("s3 location used but no object store is configured")

// ObjectStore is the subset of the S3 API used for sources and sinks.
// *s3.Client satisfies it.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Opener resolves locations to readers and writers. Stdin and Stdout default
// to the process streams when nil.
type Opener struct {
	Store  ObjectStore
	Stdin  io.Reader
	Stdout io.Writer
}

// Open returns a reader for the location. The caller must close it.
func (o *Opener) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case KindStdio:
		stdin := o.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil
	case KindS3:
		if o.Store == nil {
			return nil, ErrNoObjectStore
		}
		out, err := o.Store.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(loc.Bucket),
			Key:    aws.String(loc.Key),
		})
		if err != nil {
			return nil, err
		}
		return out.Body, nil
	default:
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Create returns a writer for the location. Data reaches an S3 object only
// when the writer is closed.
func (o *Opener) Create(ctx context.Context, raw string) (io.WriteCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case KindStdio:
		stdout := o.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		return NopWriteCloser(stdout), nil
	case KindS3:
		if o.Store == nil {
			return nil, ErrNoObjectStore
		}
		return &objectWriter{ctx: ctx, store: o.Store, loc: loc}, nil
	default:
		// Create the parent folder if it doesn't exist yet.
		if dir := filepath.Dir(loc.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		f, err := os.Create(loc.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func NopWriteCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}

// objectWriter buffers everything and uploads it in a single PutObject.
type objectWriter struct {
	ctx    context.Context
	store  ObjectStore
	loc    Location
	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true

	_, err := w.store.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.loc.Bucket),
		Key:           aws.String(w.loc.Key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	})
	return err
}
