// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package agent

import "riakcsmon/common/reporter"

type metrics struct {
	cycles            *reporter.CounterVec
	cycleDuration     *reporter.HistogramVec
	submittedMetrics  *reporter.CounterVec
	skippedFields     *reporter.CounterVec
	failedSubmissions *reporter.CounterVec
}

func (c *Component) initMetrics() {
	c.metrics.cycles = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "cycles_total",
			Help: "Number of check cycles.",
		},
		[]string{"instance", "status"},
	)
	c.metrics.cycleDuration = c.r.HistogramVec(
		reporter.HistogramOpts{
			Name:    "cycle_duration_seconds",
			Help:    "Duration of check cycles.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"instance"},
	)
	c.metrics.submittedMetrics = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "submitted_metrics_total",
			Help: "Number of metrics submitted to sinks.",
		},
		[]string{"instance", "kind"},
	)
	c.metrics.skippedFields = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "skipped_fields_total",
			Help: "Number of malformed stats fields skipped.",
		},
		[]string{"instance"},
	)
	c.metrics.failedSubmissions = c.r.CounterVec(
		reporter.CounterOpts{
			Name: "failed_submissions_total",
			Help: "Number of metrics which could not be submitted.",
		},
		[]string{"instance"},
	)
}
