// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package sink forwards the metrics emitted by checks to the metric
// pipeline.
package sink

import (
	"time"

	"riakcsmon/common/daemon"
	"riakcsmon/common/reporter"
	"riakcsmon/riakcs"
)

// Sample is a metric submitted by a check.
type Sample struct {
	Time     time.Time         `json:"time"`
	Instance string            `json:"instance"`
	Tags     map[string]string `json:"tags,omitempty"`
	Name     string            `json:"name"`
	Kind     riakcs.Kind       `json:"kind"`
	Value    float64           `json:"value"`
}

// Sink is a destination for samples.
type Sink interface {
	Start() error
	Stop() error
	// Submit forwards a sample. It does not block: a sample that cannot
	// be accepted right away is dropped and an error is returned.
	Submit(Sample) error
}

// Dependencies define the dependencies of a sink.
type Dependencies struct {
	Daemon daemon.Component
}

// New creates the sink described by the provided configuration.
func New(r *reporter.Reporter, configuration Configuration, dependencies Dependencies) (Sink, error) {
	return configuration.Config.New(r, dependencies)
}
