// SPDX-FileCopyrightText: 2024 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package kafka

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	gometrics "github.com/rcrowley/go-metrics"

	"riakcsmon/common/reporter"
)

// Metrics exposes the metrics of a sarama client, collected from its
// go-metrics registry. It includes broker and producer metrics.
type Metrics struct {
	registry gometrics.Registry

	// Broker
	kafkaIncomingByteRate *reporter.MetricDesc
	kafkaOutgoingByteRate *reporter.MetricDesc
	kafkaRequestRate      *reporter.MetricDesc
	kafkaRequestSize      *reporter.MetricDesc
	kafkaRequestLatency   *reporter.MetricDesc
	kafkaResponseRate     *reporter.MetricDesc
	kafkaResponseSize     *reporter.MetricDesc
	kafkaRequestsInFlight *reporter.MetricDesc

	// Producer
	kafkaProducerBatchSize         *reporter.MetricDesc
	kafkaProducerRecordSendRate    *reporter.MetricDesc
	kafkaProducerRecordsPerRequest *reporter.MetricDesc
	kafkaProducerCompressionRatio  *reporter.MetricDesc
}

// Init initializes the Kafka-related metrics and registers them.
func (m *Metrics) Init(r *reporter.Reporter, registry gometrics.Registry) error {
	m.registry = registry

	m.kafkaIncomingByteRate = r.MetricDesc(
		"brokers_incoming_byte_rate",
		"Bytes/second read off a given broker.",
		[]string{"broker"})
	m.kafkaOutgoingByteRate = r.MetricDesc(
		"brokers_outgoing_byte_rate",
		"Bytes/second written off a given broker.",
		[]string{"broker"})
	m.kafkaRequestRate = r.MetricDesc(
		"brokers_request_rate",
		"Requests/second sent to a given broker.",
		[]string{"broker"})
	m.kafkaRequestSize = r.MetricDesc(
		"brokers_request_size",
		"Distribution of the request size in bytes for a given broker.",
		[]string{"broker"})
	m.kafkaRequestLatency = r.MetricDesc(
		"brokers_request_latency_ms",
		"Distribution of the request latency in ms for a given broker.",
		[]string{"broker"})
	m.kafkaResponseRate = r.MetricDesc(
		"brokers_response_rate",
		"Responses/second received from a given broker.",
		[]string{"broker"})
	m.kafkaResponseSize = r.MetricDesc(
		"brokers_response_bytes",
		"Distribution of the response size in bytes for a given broker.",
		[]string{"broker"})
	m.kafkaRequestsInFlight = r.MetricDesc(
		"brokers_inflight_requests",
		"The current number of in-flight requests awaiting a response for a given broker.",
		[]string{"broker"})
	m.kafkaProducerBatchSize = r.MetricDesc(
		"producer_batch_bytes",
		"Distribution of the number of bytes sent per partition per request.",
		nil)
	m.kafkaProducerRecordSendRate = r.MetricDesc(
		"producer_record_send_rate",
		"Records/second sent.",
		nil)
	m.kafkaProducerRecordsPerRequest = r.MetricDesc(
		"producer_records_per_request",
		"Distribution of the number of records sent per request.",
		nil)
	m.kafkaProducerCompressionRatio = r.MetricDesc(
		"producer_compression_ratio",
		"Distribution of the compression ratio times 100 of record batches.",
		nil)
	return r.MetricCollector(m)
}

// Describe collected metrics
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.kafkaIncomingByteRate
	ch <- m.kafkaOutgoingByteRate
	ch <- m.kafkaRequestRate
	ch <- m.kafkaRequestSize
	ch <- m.kafkaRequestLatency
	ch <- m.kafkaResponseRate
	ch <- m.kafkaResponseSize
	ch <- m.kafkaRequestsInFlight
	ch <- m.kafkaProducerBatchSize
	ch <- m.kafkaProducerRecordSendRate
	ch <- m.kafkaProducerRecordsPerRequest
	ch <- m.kafkaProducerCompressionRatio
}

// Collect metrics
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.registry.Each(func(name string, gom any) {
		// Broker-related
		if broker := metricBroker(name, "incoming-byte-rate"); broker != "" {
			gomMeter(ch, m.kafkaIncomingByteRate, gom, broker)
			return
		}
		if broker := metricBroker(name, "outgoing-byte-rate"); broker != "" {
			gomMeter(ch, m.kafkaOutgoingByteRate, gom, broker)
			return
		}
		if broker := metricBroker(name, "request-rate"); broker != "" {
			gomMeter(ch, m.kafkaRequestRate, gom, broker)
			return
		}
		if broker := metricBroker(name, "request-size"); broker != "" {
			gomHistogram(ch, m.kafkaRequestSize, gom, broker)
			return
		}
		if broker := metricBroker(name, "request-latency-in-ms"); broker != "" {
			gomHistogram(ch, m.kafkaRequestLatency, gom, broker)
			return
		}
		if broker := metricBroker(name, "response-rate"); broker != "" {
			gomMeter(ch, m.kafkaResponseRate, gom, broker)
			return
		}
		if broker := metricBroker(name, "response-size"); broker != "" {
			gomHistogram(ch, m.kafkaResponseSize, gom, broker)
			return
		}
		if broker := metricBroker(name, "requests-in-flight"); broker != "" {
			gomCounter(ch, m.kafkaRequestsInFlight, gom, broker)
			return
		}
		// Producer-related
		if name == "batch-size" {
			gomHistogram(ch, m.kafkaProducerBatchSize, gom)
			return
		}
		if name == "record-send-rate" {
			gomMeter(ch, m.kafkaProducerRecordSendRate, gom)
			return
		}
		if name == "records-per-request" {
			gomHistogram(ch, m.kafkaProducerRecordsPerRequest, gom)
			return
		}
		if name == "compression-ratio" {
			gomHistogram(ch, m.kafkaProducerCompressionRatio, gom)
			return
		}
	})
}

func metricBroker(name, prefix string) string {
	prefix = prefix + "-for-broker-"
	if strings.HasPrefix(name, prefix) {
		return strings.TrimPrefix(name, prefix)
	}
	return ""
}

func gomMeter(ch chan<- prometheus.Metric, desc *reporter.MetricDesc, m any, labels ...string) {
	meter, ok := m.(gometrics.Meter)
	if !ok {
		return
	}
	snap := meter.Snapshot()
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, snap.Rate1(), labels...)
}

func gomCounter(ch chan<- prometheus.Metric, desc *reporter.MetricDesc, m any, labels ...string) {
	counter, ok := m.(gometrics.Counter)
	if !ok {
		return
	}
	snap := counter.Snapshot()
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(snap.Count()), labels...)
}

func gomHistogram(ch chan<- prometheus.Metric, desc *reporter.MetricDesc, m any, labels ...string) {
	histogram, ok := m.(gometrics.Histogram)
	if !ok {
		return
	}
	snap := histogram.Snapshot()
	buckets := map[float64]uint64{
		0.5:  uint64(snap.Percentile(0.5)),
		0.9:  uint64(snap.Percentile(0.9)),
		0.99: uint64(snap.Percentile(0.99)),
	}
	ch <- prometheus.MustNewConstHistogram(desc, uint64(snap.Count()), float64(snap.Sum()), buckets, labels...)
}
