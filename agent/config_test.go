// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package agent

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"riakcsmon/agent/sink"
	"riakcsmon/common/helpers"
	"riakcsmon/riakcs"
)

func TestDefaultConfiguration(t *testing.T) {
	if err := helpers.Validate.Struct(DefaultConfiguration()); err != nil {
		t.Fatalf("validate.Struct() error:\n%+v", err)
	}
}

func TestConfigurationDecode(t *testing.T) {
	helpers.TestConfigurationDecode(t, helpers.ConfigurationDecodeCases{
		{
			Description:   "default",
			Initial:       func() any { return DefaultConfiguration() },
			Configuration: func() any { return map[string]any{} },
			Expected:      DefaultConfiguration(),
		}, {
			Description: "two instances and two sinks",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"interval":              "1m",
					"timeout":               "30s",
					"status-cache-duration": "0s",
					"instances": []map[string]any{
						{
							"host": "riak1.example.com",
							"tags": map[string]any{"dc": "paris"},
						}, {
							"host": "riak2.example.com",
							"port": 8081,
						},
					},
					"sinks": []map[string]any{
						{"type": "prometheus", "namespace": "storage"},
						{"type": "log", "level": "info"},
					},
				}
			},
			Expected: Configuration{
				Interval: time.Minute,
				Timeout:  30 * time.Second,
				Instances: []riakcs.Configuration{
					{
						Host:   "riak1.example.com",
						Port:   8080,
						Region: "us-east-1",
						Tags:   map[string]string{"dc": "paris"},
					}, {
						Host:   "riak2.example.com",
						Port:   8081,
						Region: "us-east-1",
					},
				},
				Sinks: []sink.Configuration{
					{Config: &sink.PrometheusConfiguration{Namespace: "storage"}},
					{Config: &sink.LogConfiguration{Level: zerolog.InfoLevel}},
				},
			},
		}, {
			Description: "timeout larger than interval",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"interval": "10s",
					"timeout":  "20s",
				}
			},
			Error: true,
		}, {
			Description: "interval too short",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"interval": "100ms",
					"timeout":  "100ms",
				}
			},
			Error: true,
		}, {
			Description: "no instance",
			Initial:     func() any { return Configuration{} },
			Configuration: func() any {
				return map[string]any{
					"interval": "10s",
					"timeout":  "5s",
					"sinks": []map[string]any{
						{"type": "log"},
					},
				}
			},
			Error: true,
		}, {
			Description: "unknown key",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"frequency": "10s",
				}
			},
			Error: true,
		},
	})
}
