// Package s3 implements the image store on an S3-compatible bucket.
//
// Static credentials plus an optional custom endpoint cover both AWS S3 and
// S3-compatible services (Cloudflare R2, MinIO) with the same client.
package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"github.com/sakif/feedboard/internal/storage"
)

// keyPrefix namespaces every stored image inside the bucket. References
// handed out to clients keep the prefix, e.g. "images/cv37rs3pp9olc6a.png".
const keyPrefix = "images/"

// Config holds the connection settings for the bucket.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	Endpoint        string // optional, for R2/MinIO; empty means AWS S3
}

// Store implements storage.ImageStore against an S3-compatible bucket.
type Store struct {
	client *s3.Client
	bucket string
}

var _ storage.ImageStore = (*Store)(nil)

// New creates a Store from static credentials.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Store uploads the binary and returns its reference. The key is generated
// here (xid plus the original file extension), so two uploads of the same
// filename never collide.
func (s *Store) Store(ctx context.Context, filename string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := keyPrefix + xid.New().String() + ext

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("s3: storing image %s: %w", key, err)
	}

	return key, nil
}

// Delete removes the object for the given reference. Deleting a reference
// that no longer exists is not an error in S3, which suits the best-effort
// semantics of the callers.
func (s *Store) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("s3: deleting image %s: %w", ref, err)
	}
	return nil
}
