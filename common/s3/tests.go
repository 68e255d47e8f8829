// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package s3

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// FakeObject is an object stored in a fake S3 server.
type FakeObject struct {
	Bucket  string
	Key     string
	Content []byte
}

// NewFakeServer starts an in-memory S3 server holding the provided
// objects. Requests are routed on their path only, so the server can also
// be used as a proxy for path-style requests to any endpoint. Buckets are
// created as needed.
func NewFakeServer(t *testing.T, objects ...FakeObject) *httptest.Server {
	t.Helper()
	backend := s3mem.New()
	faker := gofakes3.New(backend)
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	client := awss3.New(awss3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(ts.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("id", "secret", ""),

		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	buckets := map[string]bool{}
	for _, object := range objects {
		if !buckets[object.Bucket] {
			if err := backend.CreateBucket(object.Bucket); err != nil {
				t.Fatalf("CreateBucket(%q) error:\n%+v", object.Bucket, err)
			}
			buckets[object.Bucket] = true
		}
		if _, err := client.PutObject(context.Background(), &awss3.PutObjectInput{
			Bucket: aws.String(object.Bucket),
			Key:    aws.String(object.Key),
			Body:   bytes.NewReader(object.Content),
		}); err != nil {
			t.Fatalf("PutObject(%q, %q) error:\n%+v", object.Bucket, object.Key, err)
		}
	}
	return ts
}
