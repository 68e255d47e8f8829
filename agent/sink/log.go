// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package sink

import (
	"github.com/rs/zerolog"

	"riakcsmon/common/reporter"
)

// LogConfiguration describes a sink logging each sample.
type LogConfiguration struct {
	// Level is the level samples are logged at.
	Level zerolog.Level
}

// DefaultLogConfiguration returns the default configuration for the log sink.
func DefaultLogConfiguration() SinkConfiguration {
	return &LogConfiguration{
		Level: zerolog.DebugLevel,
	}
}

type logSink struct {
	r      *reporter.Reporter
	config LogConfiguration
}

// New creates a log sink.
func (c LogConfiguration) New(r *reporter.Reporter, _ Dependencies) (Sink, error) {
	return &logSink{r: r, config: c}, nil
}

func (s *logSink) Start() error { return nil }
func (s *logSink) Stop() error  { return nil }

func (s *logSink) Submit(sample Sample) error {
	s.r.WithLevel(s.config.Level).
		Time("at", sample.Time).
		Str("instance", sample.Instance).
		Interface("tags", sample.Tags).
		Str("name", sample.Name).
		Stringer("kind", sample.Kind).
		Float64("value", sample.Value).
		Msg("metric")
	return nil
}
