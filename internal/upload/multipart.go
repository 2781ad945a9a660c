// Package upload drives the three-phase multipart-upload protocol. The
// gateway keeps no state between phases: the upload ID and accumulated part
// ETags travel with the client, and the backend remains the sole source of
// truth for which state an upload is in.
package upload

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/media-io/s3-signer/internal/apierr"
	"github.com/media-io/s3-signer/internal/config"
	"github.com/media-io/s3-signer/internal/signer"
)

// Part is one completed part as reported back by the client.
type Part struct {
	Number int32
	ETag   string
}

// Orchestrator forwards each multipart phase to the backend as an
// independent operation.
type Orchestrator struct {
	cfg    config.Store
	signer *signer.Signer
}

func NewOrchestrator(cfg config.Store, s *signer.Signer) *Orchestrator {
	return &Orchestrator{cfg: cfg, signer: s}
}

// Create starts a multipart upload and returns the backend-issued upload ID.
// A successful backend response without an upload ID is a protocol
// violation, never defaulted.
func (o *Orchestrator) Create(ctx context.Context, bucket, key string) (string, error) {
	const op = "create multipart upload"
	if err := requireObject(op, bucket, key); err != nil {
		return "", err
	}

	slog.Info("creating multipart upload", "bucket", bucket, "key", key)

	out, err := o.cfg.Client().CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", apierr.Backend(op, err)
	}

	uploadID := aws.ToString(out.UploadId)
	if uploadID == "" {
		return "", apierr.Protocol(op, "backend response is missing the upload ID")
	}
	return uploadID, nil
}

// PartURL returns a presigned URL for uploading one part. Parts may be
// requested in any order and any number of times; contiguity and uniqueness
// are the client's and backend's concern.
func (o *Orchestrator) PartURL(ctx context.Context, bucket, key, uploadID string, partNumber int32) (string, error) {
	return o.signer.SignUploadPart(ctx, bucket, key, uploadID, partNumber)
}

// Complete assembles the uploaded parts into the final object. The part
// list is forwarded 1:1; an empty list is passed through and rejected (or
// not) by the backend. Completion is not retried here: retry safety depends
// on backend-side partial effects only the caller can reason about.
func (o *Orchestrator) Complete(ctx context.Context, bucket, key, uploadID string, parts []Part) error {
	const op = "complete multipart upload"
	if err := requireObject(op, bucket, key); err != nil {
		return err
	}
	if uploadID == "" {
		return apierr.Validation(op, "upload ID cannot be empty")
	}

	slog.Info("completing multipart upload",
		"bucket", bucket, "key", key, "upload_id", uploadID, "parts", len(parts))

	completed := make([]types.CompletedPart, len(parts))
	for i, part := range parts {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(part.Number),
			ETag:       aws.String(part.ETag),
		}
	}

	_, err := o.cfg.Client().CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return apierr.Backend(op, err)
	}
	return nil
}

// Abort cancels an in-progress upload. Aborting an already-terminated
// upload is delegated to the backend's own idempotency guarantees; whatever
// it answers is surfaced, not masked into a success.
func (o *Orchestrator) Abort(ctx context.Context, bucket, key, uploadID string) error {
	const op = "abort multipart upload"
	if err := requireObject(op, bucket, key); err != nil {
		return err
	}
	if uploadID == "" {
		return apierr.Validation(op, "upload ID cannot be empty")
	}

	slog.Info("aborting multipart upload", "bucket", bucket, "key", key, "upload_id", uploadID)

	_, err := o.cfg.Client().AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return apierr.Backend(op, err)
	}
	return nil
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
