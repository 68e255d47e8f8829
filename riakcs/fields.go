// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

const (
	statsBucket   = "riak-cs"
	statsKey      = "stats"
	metricPrefix  = "riakcs."
	defaultS3Root = "s3.amazonaws.com"
)

// operationFields are the per-operation statistics. Each value is a count
// followed by one value for each of operationGauges.
var operationFields = []string{
	// Objects
	"object_get", "object_put", "object_delete", "object_head",
	"object_get_acl", "object_put_acl",
	// Buckets
	"bucket_create", "service_get_buckets", "bucket_delete",
	"bucket_list_keys", "bucket_get_acl", "bucket_put_acl",
	// Blocks
	"block_get", "block_put", "block_delete", "block_get_retry",
}

var operationGauges = []string{
	"rate", "latency_mean", "latency_median", "latency_95", "latency_99",
}

// poolFields are the per-pool statistics. Each value has one value for
// each of poolGauges.
var poolFields = []string{"bucket_list_pool", "request_pool"}

var poolGauges = []string{"workers", "overflow", "size"}
