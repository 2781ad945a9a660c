// Package signer issues presigned URLs for individual object-store
// operations. Signing is a pure function of the store configuration and the
// request parameters; no network I/O happens here.
package signer

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/media-io/s3-signer/internal/apierr"
	"github.com/media-io/s3-signer/internal/config"
)

// URLExpiry is the validity window embedded in every presigned URL,
// starting at signing time.
const URLExpiry = time.Hour

// Signer wraps the SDK presigning client behind the three operations the
// gateway hands out URLs for.
type Signer struct {
	cfg config.Store
}

func New(cfg config.Store) *Signer {
	return &Signer{cfg: cfg}
}

func withExpiry(opts *s3.PresignOptions) {
	opts.Expires = URLExpiry
}

// SignGet returns a presigned URL authorizing a GET of the object.
func (s *Signer) SignGet(ctx context.Context, bucket, key string) (string, error) {
	if err := requireObject("sign get object", bucket, key); err != nil {
		return "", err
	}

	req, err := s.cfg.Presigner().PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, withExpiry)
	if err != nil {
		return "", apierr.Configuration("sign get object", err)
	}
	return req.URL, nil
}

// SignPut returns a presigned URL authorizing a PUT of the object.
func (s *Signer) SignPut(ctx context.Context, bucket, key string) (string, error) {
	if err := requireObject("sign put object", bucket, key); err != nil {
		return "", err
	}

	req, err := s.cfg.Presigner().PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, withExpiry)
	if err != nil {
		return "", apierr.Configuration("sign put object", err)
	}
	return req.URL, nil
}

// SignUploadPart returns a presigned URL authorizing the upload of one part
// of an in-progress multipart upload. Part numbers start at 1.
func (s *Signer) SignUploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int32) (string, error) {
	const op = "sign upload part"
	if err := requireObject(op, bucket, key); err != nil {
		return "", err
	}
	if uploadID == "" {
		return "", apierr.Validation(op, "upload ID cannot be empty")
	}
	if partNumber < 1 {
		return "", apierr.Validation(op, "part number must be >= 1, got %d", partNumber)
	}

	slog.Debug("signing part upload URL",
		"bucket", bucket, "key", key, "upload_id", uploadID, "part_number", partNumber)

	req, err := s.cfg.Presigner().PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
	}, withExpiry)
	if err != nil {
		return "", apierr.Configuration(op, err)
	}
	return req.URL, nil
}

func requireObject(op, bucket, key string) error {
	if bucket == "" {
		return apierr.Validation(op, "bucket cannot be empty")
	}
	if key == "" {
		return apierr.Validation(op, "object key cannot be empty")
	}
	return nil
}
