// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package s3 handles the communication with S3-compatible object storages
// for riakcsmon.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
)

// Client is an S3 client for one endpoint.
type Client struct {
	r       *reporter.Reporter
	config  Configuration
	client  *awss3.Client
	metrics metrics
}

// New creates a new S3 client. No request is sent. The client makes a
// single attempt for each request.
func New(ctx context.Context, r *reporter.Reporter, configuration Configuration) (*Client, error) {
	if err := helpers.Validate.Struct(configuration); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}
	endpoint, err := url.Parse(configuration.Endpoint)
	if err != nil || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid S3 endpoint %q", configuration.Endpoint)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if configuration.Proxy != "" {
		proxy, err := url.Parse(configuration.Proxy)
		if err != nil || proxy.Host == "" {
			return nil, fmt.Errorf("invalid S3 proxy %q", configuration.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	awsConfigOptions := []func(*config.LoadOptions) error{
		config.WithRegion(configuration.Region),
		config.WithHTTPClient(&http.Client{Transport: transport}),
		config.WithRetryMaxAttempts(1),
	}
	if configuration.AccessKeyID != "" {
		awsConfigOptions = append(awsConfigOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				configuration.AccessKeyID, configuration.SecretAccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, awsConfigOptions...)
	if err != nil {
		return nil, fmt.Errorf("cannot load S3 configuration: %w", err)
	}

	c := Client{
		r:      r,
		config: configuration,
		client: awss3.NewFromConfig(cfg, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(configuration.Endpoint)
			o.UsePathStyle = configuration.PathStyle
		}),
	}
	c.initMetrics()
	r.Debug().
		Str("endpoint", configuration.Endpoint).
		Str("proxy", configuration.Proxy).
		Bool("path-style", configuration.PathStyle).
		Msg("created S3 client")
	return &c, nil
}

// GetObject returns the content of an object. The existence of the bucket
// is not checked beforehand.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	c.r.Debug().Str("bucket", bucket).Str("key", key).Msg("getting object")
	output, err := c.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.metrics.getObjectError.WithLabelValues(c.config.Endpoint, bucket, key, ErrorCode(err)).Inc()
		return nil, err
	}
	defer output.Body.Close()
	body, err := io.ReadAll(output.Body)
	if err != nil {
		c.metrics.getObjectError.WithLabelValues(c.config.Endpoint, bucket, key, "ReadError").Inc()
		return nil, fmt.Errorf("cannot read object %s/%s: %w", bucket, key, err)
	}
	c.metrics.getObjectSuccess.WithLabelValues(c.config.Endpoint, bucket, key).Inc()
	c.metrics.getObjectBytes.WithLabelValues(c.config.Endpoint, bucket, key).Add(float64(len(body)))
	return body, nil
}

// ErrorCode returns the error code reported by the service (NoSuchKey,
// AccessDenied...) or "Unknown" when the error does not come from the
// service.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "Unknown"
}
