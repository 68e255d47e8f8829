// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package riakcs polls the statistics of a Riak CS instance and turns them
// into count and gauge metrics.
//
// The statistics are stored by Riak CS in the "stats" object of the
// "riak-cs" bucket. They are fetched through the Riak CS proxy with an S3
// client.
package riakcs

import (
	"context"

	"riakcsmon/common/reporter"
	"riakcsmon/common/s3"
)

// Check polls one Riak CS instance.
type Check struct {
	r      *reporter.Reporter
	config Configuration
}

// ObjectGetter fetches the content of an object.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Result summarizes a check cycle.
type Result struct {
	Metrics           []Metric
	SkippedFields     []error
	FailedSubmissions []error
}

// New creates a new check for the provided instance.
func New(r *reporter.Reporter, configuration Configuration) *Check {
	return &Check{
		r:      r,
		config: configuration,
	}
}

// Target returns the identifier of the checked instance.
func (c *Check) Target() string {
	return c.config.Target()
}

// Connect builds a client for the instance. No request is sent.
func (c *Check) Connect(ctx context.Context) (*s3.Client, error) {
	client, err := s3.New(ctx, c.r, s3.Configuration{
		Endpoint:        c.config.Endpoint(),
		Proxy:           c.config.Proxy(),
		Region:          c.config.Region,
		AccessKeyID:     c.config.AccessID,
		SecretAccessKey: c.config.AccessSecret,
		PathStyle:       c.config.PathStyle,
	})
	if err != nil {
		return nil, &ConnectionError{Target: c.Target(), Err: err}
	}
	return client, nil
}

// FetchStats retrieves the raw stats. The bucket is not checked for
// existence.
func (c *Check) FetchStats(ctx context.Context, client ObjectGetter) ([]byte, error) {
	raw, err := client.GetObject(ctx, statsBucket, statsKey)
	if err != nil {
		return nil, &FetchError{Target: c.Target(), Err: err}
	}
	c.r.Debug().
		Str("target", c.Target()).
		Int("size", len(raw)).
		Msg("fetched stats")
	return raw, nil
}

// Run executes one check cycle: connect, fetch, parse and emit. When an
// error is returned, nothing has been submitted.
func (c *Check) Run(ctx context.Context, submitCount, submitGauge SubmitFunc) (Result, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return Result{}, err
	}
	raw, err := c.FetchStats(ctx, client)
	if err != nil {
		return Result{}, err
	}
	metrics, skipped, err := Parse(raw)
	if err != nil {
		if decodeErr, ok := err.(*DecodeError); ok {
			decodeErr.Target = c.Target()
		}
		return Result{}, err
	}
	for _, err := range skipped {
		c.r.Err(err).Str("target", c.Target()).Msg("skipping malformed field")
	}
	c.r.Debug().
		Str("target", c.Target()).
		Int("metrics", len(metrics)).
		Msg("parsed stats")
	failed := Emit(c.r, metrics, submitCount, submitGauge)
	return Result{
		Metrics:           metrics,
		SkippedFields:     skipped,
		FailedSubmissions: failed,
	}, nil
}
