// Package config holds the immutable store configuration shared by every
// request handler: which S3-compatible backend to talk to and the single
// credential pair used to sign on behalf of clients.
package config

import (
	"fmt"
	"strings"
)

// DefaultRegion is used when no region is supplied.
const DefaultRegion = "us-east-1"

// Store identifies the backend object store and the signing credentials.
// Constructed once at process start and shared read-only across handlers.
type Store struct {
	AccessKeyID     string
	SecretAccessKey string

	// Region is the backend region. When Endpoint is set it is a custom
	// logical label rather than an AWS region name.
	Region string

	// Endpoint selects a non-AWS S3-compatible backend. Empty means AWS.
	Endpoint string
}

// New returns a Store targeting an AWS region.
func New(accessKeyID, secretAccessKey, region string) (Store, error) {
	s := Store{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
	}
	if s.Region == "" {
		s.Region = DefaultRegion
	}
	return s, s.validate()
}

// NewWithHostname returns a Store targeting a custom S3-compatible endpoint.
// A hostname without a scheme is served over https.
func NewWithHostname(accessKeyID, secretAccessKey, region, hostname string) (Store, error) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return Store{}, fmt.Errorf("hostname cannot be empty")
	}
	if !strings.Contains(hostname, "://") {
		hostname = "https://" + hostname
	}
	s := Store{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
		Endpoint:        hostname,
	}
	if s.Region == "" {
		s.Region = DefaultRegion
	}
	return s, s.validate()
}

func (s Store) validate() error {
	if s.AccessKeyID == "" {
		return fmt.Errorf("access key ID cannot be empty")
	}
	if s.SecretAccessKey == "" {
		return fmt.Errorf("secret access key cannot be empty")
	}
	return nil
}
