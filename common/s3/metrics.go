// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package s3

import "riakcsmon/common/reporter"

type metrics struct {
	getObjectSuccess *reporter.CounterVec
	getObjectError   *reporter.CounterVec
	getObjectBytes   *reporter.CounterVec
}

func (c *Client) initMetrics() {
	c.metrics.getObjectSuccess = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "get_object_success_total",
			Help: "Number of successful S3 GetObject calls.",
		}, []string{"endpoint", "bucket", "object"},
	)
	c.metrics.getObjectError = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "get_object_errors_total",
			Help: "Number of failed S3 GetObject calls.",
		}, []string{"endpoint", "bucket", "object", "code"},
	)
	c.metrics.getObjectBytes = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "get_object_bytes_total",
			Help: "Number of bytes read from S3 objects.",
		}, []string{"endpoint", "bucket", "object"},
	)
}
