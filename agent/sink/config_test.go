// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package sink

import (
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"riakcsmon/common/helpers"
	"riakcsmon/common/helpers/yaml"
	"riakcsmon/common/kafka"
)

func TestConfigurationDecode(t *testing.T) {
	helpers.TestConfigurationDecode(t, helpers.ConfigurationDecodeCases{
		{
			Description:   "default",
			Initial:       func() any { return DefaultConfiguration() },
			Configuration: func() any { return map[string]any{} },
			Expected:      DefaultConfiguration(),
		}, {
			Description: "prometheus with namespace",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"namespace": "storage",
				}
			},
			Expected: Configuration{
				Config: &PrometheusConfiguration{Namespace: "storage"},
			},
		}, {
			Description: "kafka",
			Initial:     func() any { return Configuration{} },
			Configuration: func() any {
				return map[string]any{
					"type":              "kafka",
					"brokers":           "kafka1:9092",
					"topic":             "riakcs",
					"compression-codec": "zstd",
					"flush-interval":    "5s",
				}
			},
			Expected: Configuration{
				Config: &KafkaConfiguration{
					Configuration: kafka.Configuration{
						Topic:   "riakcs",
						Brokers: []string{"kafka1:9092"},
						Version: kafka.Version(sarama.V2_8_1_0),
					},
					FlushInterval:    5 * time.Second,
					FlushBytes:       int(sarama.MaxRequestSize) - 1,
					MaxMessageBytes:  1000000,
					CompressionCodec: CompressionCodec(sarama.CompressionZSTD),
					QueueSize:        256,
				},
			},
		}, {
			Description: "log",
			Initial:     func() any { return Configuration{} },
			Configuration: func() any {
				return map[string]any{
					"type":  "log",
					"level": "info",
				}
			},
			Expected: Configuration{
				Config: &LogConfiguration{Level: zerolog.InfoLevel},
			},
		}, {
			Description: "no type",
			Initial:     func() any { return Configuration{} },
			Configuration: func() any {
				return map[string]any{
					"level": "info",
				}
			},
			Error: true,
		}, {
			Description: "unknown type",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"type": "graphite",
				}
			},
			Error: true,
		}, {
			Description: "invalid compression",
			Initial:     func() any { return Configuration{} },
			Configuration: func() any {
				return map[string]any{
					"type":              "kafka",
					"compression-codec": "brotli",
				}
			},
			Error: true,
		}, {
			Description: "invalid namespace",
			Initial:     func() any { return DefaultConfiguration() },
			Configuration: func() any {
				return map[string]any{
					"namespace": "riak cs",
				}
			},
			Error: true,
		},
	})
}

func TestMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(Configuration{Config: &LogConfiguration{Level: zerolog.WarnLevel}})
	if err != nil {
		t.Fatalf("yaml.Marshal() error:\n%+v", err)
	}
	got := strings.Split(strings.TrimSpace(string(out)), "\n")
	expected := []string{"level: warn", "type: log"}
	if diff := helpers.Diff(got, expected); diff != "" {
		t.Fatalf("yaml.Marshal() (-got, +want):\n%s", diff)
	}
}
