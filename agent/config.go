// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package agent

import (
	"time"

	"riakcsmon/agent/sink"
	"riakcsmon/riakcs"
)

// Configuration describes the configuration of the agent.
type Configuration struct {
	// Interval is the time between two check cycles for an instance.
	Interval time.Duration `validate:"min=1s"`
	// Timeout is the maximum duration of a check cycle.
	Timeout time.Duration `validate:"min=100ms,ltefield=Interval"`
	// StatusCacheDuration is how long the status API answers are cached.
	// Use 0 to disable caching.
	StatusCacheDuration time.Duration `validate:"min=0"`
	// Instances are the Riak CS instances to check.
	Instances []riakcs.Configuration `validate:"min=1,dive"`
	// Sinks are where metrics are sent to.
	Sinks []sink.Configuration `validate:"min=1,dive"`
}

// DefaultConfiguration represents the default configuration for the agent.
func DefaultConfiguration() Configuration {
	return Configuration{
		Interval:            15 * time.Second,
		Timeout:             10 * time.Second,
		StatusCacheDuration: 5 * time.Second,
		Instances:           []riakcs.Configuration{riakcs.DefaultConfiguration()},
		Sinks:               []sink.Configuration{sink.DefaultConfiguration()},
	}
}
