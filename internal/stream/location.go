package stream

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tells where a location points to.
type Kind int

const (
	KindStdio Kind = iota
	KindFile
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindStdio:
		return "stdio"
	case KindFile:
		return "file"
	case KindS3:
		return "s3"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var ErrEmptyLocation = errors.New("empty location")
var ErrInvalidS3Location = errors.New("invalid s3 location, expected s3://bucket/key")

const s3Scheme = "s3://"

// Location is a parsed source or sink: "-" for stdin/stdout, s3://bucket/key
// for an object, anything else is a local path.
type Location struct {
	Kind   Kind
	Path   string
	Bucket string
	Key    string
}

func ParseLocation(raw string) (Location, error) {
	switch {
	case raw == "":
		return Location{}, ErrEmptyLocation
	case raw == "-":
		return Location{Kind: KindStdio}, nil
	case strings.HasPrefix(raw, s3Scheme):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(raw, s3Scheme), "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q", ErrInvalidS3Location, raw)
		}
		return Location{Kind: KindS3, Bucket: bucket, Key: key}, nil
	default:
		return Location{Kind: KindFile, Path: raw}, nil
	}
}

func (l Location) String() string {
	switch l.Kind {
	case KindStdio:
		return "-"
	case KindS3:
		return s3Scheme + l.Bucket + "/" + l.Key
	default:
		return l.Path
	}
}

// IsS3 reports whether any of the raw locations points to S3, so callers only
// build an S3 client when one is needed.
func IsS3(raw ...string) bool {
	for _, r := range raw {
		if strings.HasPrefix(r, s3Scheme) {
			return true
		}
	}
	return false
}
