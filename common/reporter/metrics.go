// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package reporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Aliases to avoid importing the prometheus package in components. Names of
// metrics registered through the reporter are prefixed with the module name
// of the caller. Registering the same metric twice returns the existing one.
type (
	// CounterOpts defines options for counters
	CounterOpts = prometheus.CounterOpts
	// GaugeOpts defines options for gauges
	GaugeOpts = prometheus.GaugeOpts
	// HistogramOpts defines options for histograms
	HistogramOpts = prometheus.HistogramOpts

	// Counter defines counters
	Counter = prometheus.Counter
	// CounterVec defines counter vectors
	CounterVec = prometheus.CounterVec
	// Gauge defines gauges
	Gauge = prometheus.Gauge
	// GaugeFunc defines gauge functions
	GaugeFunc = prometheus.GaugeFunc
	// GaugeVec defines gauge vectors
	GaugeVec = prometheus.GaugeVec
	// Histogram defines histograms
	Histogram = prometheus.Histogram
	// HistogramVec defines histogram vectors
	HistogramVec = prometheus.HistogramVec

	// MetricDesc defines a metric description
	MetricDesc = prometheus.Desc
)

// Counter mimics NewCounter from promauto package.
func (r *Reporter) Counter(opts CounterOpts) Counter {
	return r.metrics.Factory(1).NewCounter(opts)
}

// CounterVec mimics NewCounterVec from promauto package.
func (r *Reporter) CounterVec(opts CounterOpts, labelNames []string) *CounterVec {
	return r.metrics.Factory(1).NewCounterVec(opts, labelNames)
}

// Gauge mimics NewGauge from promauto package.
func (r *Reporter) Gauge(opts GaugeOpts) Gauge {
	return r.metrics.Factory(1).NewGauge(opts)
}

// GaugeFunc mimics NewGaugeFunc from promauto package.
func (r *Reporter) GaugeFunc(opts GaugeOpts, function func() float64) GaugeFunc {
	return r.metrics.Factory(1).NewGaugeFunc(opts, function)
}

// GaugeVec mimics NewGaugeVec from promauto package.
func (r *Reporter) GaugeVec(opts GaugeOpts, labelNames []string) *GaugeVec {
	return r.metrics.Factory(1).NewGaugeVec(opts, labelNames)
}

// Histogram mimics NewHistogram from promauto package.
func (r *Reporter) Histogram(opts HistogramOpts) Histogram {
	return r.metrics.Factory(1).NewHistogram(opts)
}

// HistogramVec mimics NewHistogramVec from promauto package.
func (r *Reporter) HistogramVec(opts HistogramOpts, labelNames []string) *HistogramVec {
	return r.metrics.Factory(1).NewHistogramVec(opts, labelNames)
}

// MetricsHTTPHandler returns the HTTP handler to get metrics.
func (r *Reporter) MetricsHTTPHandler() http.Handler {
	return r.metrics.HTTPHandler()
}

// MetricCollector registers a custom collector. Names are used as is.
func (r *Reporter) MetricCollector(c prometheus.Collector) error {
	return r.metrics.Collector(c)
}

// UnregisterMetricCollector removes a custom collector.
func (r *Reporter) UnregisterMetricCollector(c prometheus.Collector) bool {
	return r.metrics.Unregister(c)
}

// MetricDesc defines a new metric description. The name is prefixed with
// the module name of the caller.
func (r *Reporter) MetricDesc(name, help string, variableLabels []string) *MetricDesc {
	return r.metrics.Desc(1, name, help, variableLabels)
}
