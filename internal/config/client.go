package config

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client builds an S3 client scoped to a single backend operation. Handlers
// construct one per call rather than sharing a pooled client, so no client
// state crosses concurrent requests.
func (s Store) Client() *s3.Client {
	awsCfg := aws.Config{
		Region:      s.Region,
		Credentials: credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			// Non-AWS backends generally do not resolve
			// bucket-subdomain virtual hosts.
			o.UsePathStyle = true
		}
	})
}

// Presigner builds a presigning client over a fresh operation-scoped client.
// Presigning itself performs no network I/O.
func (s Store) Presigner() *s3.PresignClient {
	return s3.NewPresignClient(s.Client())
}
