// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package sink

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"riakcsmon/common/reporter"
	"riakcsmon/riakcs"
)

// PrometheusConfiguration describes a sink exposing the last value of each
// metric on the metrics endpoint.
type PrometheusConfiguration struct {
	// Namespace is prepended to metric names.
	Namespace string `validate:"omitempty,alphanum"`
}

// DefaultPrometheusConfiguration returns the default configuration for
// the Prometheus sink.
func DefaultPrometheusConfiguration() SinkConfiguration {
	return &PrometheusConfiguration{}
}

type prometheusSink struct {
	r      *reporter.Reporter
	config PrometheusConfiguration

	lock    sync.RWMutex
	samples map[string]Sample
}

// New creates a Prometheus sink.
func (c PrometheusConfiguration) New(r *reporter.Reporter, _ Dependencies) (Sink, error) {
	return &prometheusSink{
		r:       r,
		config:  c,
		samples: map[string]Sample{},
	}, nil
}

func (s *prometheusSink) Start() error {
	if err := s.r.MetricCollector(s); err != nil {
		return fmt.Errorf("cannot register Prometheus sink: %w", err)
	}
	return nil
}

func (s *prometheusSink) Stop() error {
	s.r.UnregisterMetricCollector(s)
	return nil
}

func (s *prometheusSink) Submit(sample Sample) error {
	if sample.Kind != riakcs.KindCount && sample.Kind != riakcs.KindGauge {
		return fmt.Errorf("cannot expose metric of kind %s", sample.Kind)
	}
	s.lock.Lock()
	s.samples[sample.Name+"\x00"+sample.Instance] = sample
	s.lock.Unlock()
	return nil
}

// Describe does not describe anything: this is an unchecked collector.
func (s *prometheusSink) Describe(chan<- *prometheus.Desc) {}

// Collect exports the stored samples. All samples of a metric get the same
// label names: the instance and the union of all tag names.
func (s *prometheusSink) Collect(ch chan<- prometheus.Metric) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tagSet := map[string]string{}
	for _, sample := range s.samples {
		for tag := range sample.Tags {
			tagSet[sanitizeName(tag)] = tag
		}
	}
	labelNames := []string{"instance"}
	tags := []string{}
	for label := range tagSet {
		if label == "instance" {
			continue
		}
		labelNames = append(labelNames, label)
	}
	slices.Sort(labelNames[1:])
	for _, label := range labelNames[1:] {
		tags = append(tags, tagSet[label])
	}

	for _, sample := range s.samples {
		name := sanitizeName(sample.Name)
		if s.config.Namespace != "" {
			name = s.config.Namespace + "_" + name
		}
		valueType := prometheus.GaugeValue
		if sample.Kind == riakcs.KindCount {
			valueType = prometheus.CounterValue
		}
		labelValues := []string{sample.Instance}
		for _, tag := range tags {
			labelValues = append(labelValues, sample.Tags[tag])
		}
		desc := prometheus.NewDesc(name, fmt.Sprintf("Riak CS metric %s.", sample.Name), labelNames, nil)
		metric, err := prometheus.NewConstMetric(desc, valueType, sample.Value, labelValues...)
		if err != nil {
			s.r.Err(err).Str("name", sample.Name).Msg("cannot export metric")
			continue
		}
		ch <- metric
	}
}

// sanitizeName turns a name into a valid Prometheus metric or label name.
func sanitizeName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)
	if sanitized == "" || (sanitized[0] >= '0' && sanitized[0] <= '9') {
		sanitized = "_" + sanitized
	}
	return sanitized
}
