// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package sink

import (
	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
)

// Configuration describes a sink. The "type" key selects the concrete
// configuration.
type Configuration struct {
	// Config is the sink-specific configuration
	Config SinkConfiguration
}

// SinkConfiguration represents the configuration of one type of sink.
type SinkConfiguration interface {
	New(*reporter.Reporter, Dependencies) (Sink, error)
}

// DefaultConfiguration returns the default sink: a Prometheus exporter.
func DefaultConfiguration() Configuration {
	return Configuration{
		Config: DefaultPrometheusConfiguration(),
	}
}

// MarshalYAML undoes the parametrized configuration hook.
func (sc Configuration) MarshalYAML() (any, error) {
	return helpers.ParametrizedConfigurationMarshalYAML(sc, sinkConfigurationMap)
}

var sinkConfigurationMap = map[string](func() SinkConfiguration){
	"prometheus": DefaultPrometheusConfiguration,
	"kafka":      DefaultKafkaConfiguration,
	"log":        DefaultLogConfiguration,
}

func init() {
	helpers.RegisterMapstructureUnmarshallerHook(
		helpers.ParametrizedConfigurationUnmarshallerHook(Configuration{}, sinkConfigurationMap))
}
