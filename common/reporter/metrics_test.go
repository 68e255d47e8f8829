// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package reporter_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
)

func TestMetrics(t *testing.T) {
	r := reporter.NewMock(t)

	counter1 := r.Counter(reporter.CounterOpts{
		Name: "counter1",
		Help: "Some counter",
	})
	counter1.Add(18)

	counter2 := r.CounterVec(reporter.CounterOpts{
		Name: "counter2",
		Help: "Another counter",
	}, []string{"instance", "status"})
	counter2.WithLabelValues("localhost:8080", "ok").Add(42)
	counter2.WithLabelValues("localhost:8080", "error").Add(3)

	gauge1 := r.Gauge(reporter.GaugeOpts{
		Name: "gauge1",
		Help: "Some gauge",
	})
	gauge1.Set(1717)

	r.GaugeFunc(reporter.GaugeOpts{
		Name: "gauge2",
		Help: "Another gauge",
	}, func() float64 { return 77 })

	histo1 := r.HistogramVec(reporter.HistogramOpts{
		Name:    "histo1",
		Help:    "Some histogram",
		Buckets: []float64{1, 10},
	}, []string{"instance"})
	histo1.WithLabelValues("localhost:8080").Observe(5)
	histo1.WithLabelValues("localhost:8080").Observe(0.5)

	got := r.GetMetrics("riakcsmon_common_reporter_test_")
	expected := map[string]string{
		`counter1`: "18",
		`counter2{instance="localhost:8080",status="error"}`:  "3",
		`counter2{instance="localhost:8080",status="ok"}`:     "42",
		`gauge1`: "1717",
		`gauge2`: "77",
		`histo1_bucket{instance="localhost:8080",le="1"}`:    "1",
		`histo1_bucket{instance="localhost:8080",le="10"}`:   "2",
		`histo1_bucket{instance="localhost:8080",le="+Inf"}`: "2",
		`histo1_count{instance="localhost:8080"}`:            "2",
		`histo1_sum{instance="localhost:8080"}`:              "5.5",
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("metrics (-got, +want):\n%s", diff)
	}

	// Registering twice returns the same metric.
	counter1bis := r.Counter(reporter.CounterOpts{
		Name: "counter1",
		Help: "Some counter",
	})
	if counter1 != counter1bis {
		t.Fatal("Counter() registered twice")
	}
}

type constCollector struct {
	desc *prometheus.Desc
}

func (c constCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c constCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 12)
}

func TestMetricCollector(t *testing.T) {
	r := reporter.NewMock(t)

	// Prefixed with module name
	prefixed := constCollector{r.MetricDesc("desc1", "Some description", nil)}
	// Used as is
	unprefixed := constCollector{prometheus.NewDesc("riakcs_object_get", "Some metric", nil, nil)}

	if err := r.MetricCollector(prefixed); err != nil {
		t.Fatalf("MetricCollector() error:\n%+v", err)
	}
	if err := r.MetricCollector(unprefixed); err != nil {
		t.Fatalf("MetricCollector() error:\n%+v", err)
	}
	if err := r.MetricCollector(unprefixed); err == nil {
		t.Fatal("MetricCollector() did not error on duplicate registration")
	}

	got := r.GetMetrics("riakcs")
	expected := map[string]string{
		`mon_common_reporter_test_desc1`: "12",
		`_object_get`:                    "12",
	}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("metrics (-got, +want):\n%s", diff)
	}

	if !r.UnregisterMetricCollector(unprefixed) {
		t.Fatal("UnregisterMetricCollector() returned false")
	}
	if got := r.GetMetrics("riakcs_"); len(got) != 0 {
		t.Fatalf("metrics after unregister: %v", got)
	}
}
