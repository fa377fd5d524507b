package stream

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the settings that override the default AWS configuration
// chain (environment, shared config files, instance roles).
type S3Config struct {
	Region    string
	Profile   string
	Endpoint  string // Custom endpoint, e.g. a MinIO server.
	PathStyle bool

	// Static credentials, used only when both are set.
	AccessKey string
	SecretKey string
}

func (c S3Config) loadOptions() []func(*config.LoadOptions) error {
	opts := []func(*config.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(c.Profile))
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	return opts
}

func (c S3Config) clientOptions(o *s3.Options) {
	if c.Endpoint != "" {
		o.BaseEndpoint = aws.String(c.Endpoint)
	}
	o.UsePathStyle = c.PathStyle
}

// NewS3Client builds an S3 client from the default configuration chain with
// the overrides in c applied.
func NewS3Client(ctx context.Context, c S3Config) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, c.loadOptions()...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, c.clientOptions), nil
}
