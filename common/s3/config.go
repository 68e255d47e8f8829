// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package s3

// Configuration describes how to reach an S3-compatible object storage.
type Configuration struct {
	// Endpoint is the base URL of the service, like
	// http://s3.amazonaws.com. Requests are signed for its hostname.
	Endpoint string `validate:"required,url"`
	// Proxy is the URL of the HTTP proxy requests go through. When empty,
	// the service is contacted directly.
	Proxy string `validate:"omitempty,url"`
	// Region is used for request signing.
	Region string `validate:"required"`
	// AccessKeyID and SecretAccessKey are static credentials. When empty,
	// the default AWS credential chain is used.
	AccessKeyID     string `validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `validate:"required_with=AccessKeyID"`
	// PathStyle addresses buckets as /bucket/key instead of using a
	// virtual host for each bucket.
	PathStyle bool
}

// DefaultConfiguration is the default configuration of the S3 client.
func DefaultConfiguration() Configuration {
	return Configuration{
		Endpoint: "http://s3.amazonaws.com",
		Region:   "us-east-1",
	}
}
