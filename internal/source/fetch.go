package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FetchConfig holds the AWS settings used when an export lives in S3.
// Profile may be empty to use the default credential chain (IAM role).
type FetchConfig struct {
	Region  string
	Profile string
}

// Open returns a reader for an export path. Paths of the form
// s3://bucket/key are fetched from S3; anything else is opened from the
// local filesystem.
func Open(ctx context.Context, cfg FetchConfig, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "s3://") {
		return openS3(ctx, cfg, path)
	}
	return os.Open(path)
}

// OpenLatin1CSV opens an export path and wraps it in a Latin-1-tolerant CSV
// reader that owns the underlying handle; Close releases it.
func OpenLatin1CSV(ctx context.Context, cfg FetchConfig, path string) (*Reader, error) {
	rc, err := Open(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(newLatin1(rc), rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return r, nil
}

func openS3(ctx context.Context, cfg FetchConfig, path string) (io.ReadCloser, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	out, err := s3.NewFromConfig(awsCfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func splitS3Path(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 path %q: expected s3://bucket/key", path)
	}
	return parts[0], parts[1], nil
}
