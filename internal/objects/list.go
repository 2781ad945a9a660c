// Package objects turns the store's flat key namespace into one-level
// directory listings.
package objects

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/media-io/s3-signer/internal/apierr"
	"github.com/media-io/s3-signer/internal/config"
)

// Delimiter groups keys into simulated directories.
const Delimiter = "/"

// Entry is one child of the listed prefix: either a leaf object or a
// one-level sub-directory reported by the backend as a common prefix.
type Entry struct {
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
}

// Lister queries the backend for keys and common prefixes.
type Lister struct {
	cfg config.Store
}

func NewLister(cfg config.Store) *Lister {
	return &Lister{cfg: cfg}
}

// List returns the objects and sub-directories directly under prefix.
// Objects come first, then directories; within each group order is whatever
// the backend returned. A prefix with no matches yields an empty slice.
func (l *Lister) List(ctx context.Context, bucket, prefix string) ([]Entry, error) {
	const op = "list objects"
	if bucket == "" {
		return nil, apierr.Validation(op, "bucket cannot be empty")
	}

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Delimiter: aws.String(Delimiter),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	out, err := l.cfg.Client().ListObjectsV2(ctx, input)
	if err != nil {
		return nil, apierr.Backend(op, err)
	}

	entries := make([]Entry, 0, len(out.Contents)+len(out.CommonPrefixes))
	for _, content := range out.Contents {
		if e, ok := buildEntry(aws.ToString(content.Key), prefix, false); ok {
			entries = append(entries, e)
		}
	}
	for _, common := range out.CommonPrefixes {
		if e, ok := buildEntry(aws.ToString(common.Prefix), prefix, true); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// buildEntry strips the requested prefix from a backend-returned key by byte
// length, not by path component. A prefix that does not end on a delimiter
// boundary therefore yields partial segment names; callers are expected to
// pass prefixes ending in the delimiter. An entry equal to the prefix itself
// (the directory marker) is discarded.
func buildEntry(key, prefix string, isDir bool) (Entry, bool) {
	if len(key) <= len(prefix) {
		return Entry{}, false
	}
	return Entry{Path: key[len(prefix):], IsDirectory: isDir}, true
}
