// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package kafka

import (
	"testing"

	gometrics "github.com/rcrowley/go-metrics"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
)

func TestMetrics(t *testing.T) {
	r := reporter.NewMock(t)
	registry := gometrics.NewRegistry()
	var m Metrics
	if err := m.Init(r, registry); err != nil {
		t.Fatalf("Init() error:\n%+v", err)
	}

	inflight := gometrics.NewCounter()
	inflight.Inc(3)
	registry.Register("requests-in-flight-for-broker-1", inflight)
	batch := gometrics.NewHistogram(gometrics.NewUniformSample(10))
	batch.Update(100)
	batch.Update(200)
	registry.Register("batch-size", batch)
	registry.Register("something-else", gometrics.NewCounter())

	gotMetrics := r.GetMetrics("riakcsmon_common_kafka_")
	expectedMetrics := map[string]string{
		`brokers_inflight_requests{broker="1"}`: "3",
		`producer_batch_bytes_bucket{le="0.5"}`:  "150",
		`producer_batch_bytes_bucket{le="0.9"}`:  "200",
		`producer_batch_bytes_bucket{le="0.99"}`: "200",
		`producer_batch_bytes_bucket{le="+Inf"}`: "2",
		`producer_batch_bytes_sum`:               "300",
		`producer_batch_bytes_count`:             "2",
	}
	if diff := helpers.Diff(gotMetrics, expectedMetrics); diff != "" {
		t.Fatalf("Metrics (-got, +want):\n%s", diff)
	}
}
