// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package kafka exposes some common helpers for Kafka, including the
// configuration struture.
package kafka

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/IBM/sarama"
	"github.com/go-viper/mapstructure/v2"
	"github.com/xdg-go/scram"

	"riakcsmon/common/helpers"
)

// Configuration defines how we connect to a Kafka cluster.
type Configuration struct {
	// Topic defines the topic to write metrics to.
	Topic string `validate:"required"`
	// Brokers is the list of brokers to connect to.
	Brokers []string `validate:"min=1,dive,listen"`
	// Version is the version of Kafka we assume to work
	Version Version
	// TLS defines TLS configuration
	TLS helpers.TLSConfiguration
	// SASL defines SASL configuration
	SASL SASLConfiguration
}

// SASLConfiguration defines SASL configuration.
type SASLConfiguration struct {
	// Username tells the SASL username
	Username string `validate:"required_with=Mechanism"`
	// Password tells the SASL password
	Password string `validate:"required_with=Mechanism"`
	// Mechanism tells the SASL algorithm
	Mechanism SASLMechanism `validate:"required_with=Username"`
}

// DefaultConfiguration represents the default configuration for connecting to Kafka.
func DefaultConfiguration() Configuration {
	return Configuration{
		Topic:   "riakcs-metrics",
		Brokers: []string{"127.0.0.1:9092"},
		Version: Version(sarama.V2_8_1_0),
	}
}

// Version represents a supported version of Kafka
type Version sarama.KafkaVersion

// UnmarshalText parses a version of Kafka
func (v *Version) UnmarshalText(text []byte) error {
	version, err := sarama.ParseKafkaVersion(string(text))
	if err != nil {
		return err
	}
	*v = Version(version)
	return nil
}

// String turns a Kafka version into a string
func (v Version) String() string {
	return sarama.KafkaVersion(v).String()
}

// MarshalText turns a Kafka version into a string
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// SASLMechanism defines an SASL algorithm
type SASLMechanism int

const (
	// SASLNone means no user authentication
	SASLNone SASLMechanism = iota
	// SASLPlain means user/password in plain text
	SASLPlain
	// SASLScramSHA256 enables SCRAM challenge with SHA256
	SASLScramSHA256
	// SASLScramSHA512 enables SCRAM challenge with SHA512
	SASLScramSHA512
)

var saslMechanismNames = map[SASLMechanism]string{
	SASLNone:        "none",
	SASLPlain:       "plain",
	SASLScramSHA256: "scram-sha256",
	SASLScramSHA512: "scram-sha512",
}

// String turns a SASL mechanism into a string.
func (m SASLMechanism) String() string {
	if name, ok := saslMechanismNames[m]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

// MarshalText turns a SASL mechanism into text.
func (m SASLMechanism) MarshalText() ([]byte, error) {
	if _, ok := saslMechanismNames[m]; !ok {
		return nil, fmt.Errorf("unknown SASL mechanism %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a SASL mechanism.
func (m *SASLMechanism) UnmarshalText(text []byte) error {
	wanted := strings.ReplaceAll(strings.ToLower(string(text)), "_", "-")
	for mechanism, name := range saslMechanismNames {
		if name == wanted {
			*m = mechanism
			return nil
		}
	}
	return fmt.Errorf("unknown SASL mechanism %q", string(text))
}

// NewConfig returns a Sarama Kafka configuration ready to use.
func NewConfig(config Configuration) (*sarama.Config, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Version = sarama.KafkaVersion(config.Version)
	kafkaConfig.ClientID = fmt.Sprintf("riakcsmon-%s", helpers.RiakcsmonVersion)
	tlsConfig, err := config.TLS.MakeTLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		kafkaConfig.Net.TLS.Enable = true
		kafkaConfig.Net.TLS.Config = tlsConfig
	}
	// SASL
	if config.SASL.Mechanism != SASLNone {
		if config.SASL.Username == "" {
			return nil, errors.New("SASL requires a username")
		}
		kafkaConfig.Net.SASL.Enable = true
		kafkaConfig.Net.SASL.User = config.SASL.Username
		kafkaConfig.Net.SASL.Password = config.SASL.Password
		switch config.SASL.Mechanism {
		case SASLPlain:
			kafkaConfig.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		case SASLScramSHA256:
			kafkaConfig.Net.SASL.Handshake = true
			kafkaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			kafkaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &xdgSCRAMClient{HashGeneratorFcn: scram.SHA256}
			}
		case SASLScramSHA512:
			kafkaConfig.Net.SASL.Handshake = true
			kafkaConfig.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			kafkaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &xdgSCRAMClient{HashGeneratorFcn: scram.SHA512}
			}
		default:
			return nil, fmt.Errorf("unknown SASL mechanism: %s", config.SASL.Mechanism)
		}
	}
	return kafkaConfig, nil
}

// ConfigurationUnmarshallerHook normalize Kafka configuration:
//   - move SASL related parameters from TLS section to SASL section
func ConfigurationUnmarshallerHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Value) (any, error) {
		if from.Kind() != reflect.Map || from.IsNil() || to.Type() != reflect.TypeFor[Configuration]() {
			return from.Interface(), nil
		}

		var tlsKey, saslKey *reflect.Value
		fromMap := from.MapKeys()
		for i, k := range fromMap {
			k = helpers.ElemOrIdentity(k)
			if k.Kind() != reflect.String {
				return from.Interface(), nil
			}
			if helpers.MapStructureMatchName(k.String(), "TLS") {
				tlsKey = &fromMap[i]
			} else if helpers.MapStructureMatchName(k.String(), "SASL") {
				saslKey = &fromMap[i]
			}
		}
		if tlsKey == nil {
			return from.Interface(), nil
		}
		tls := helpers.ElemOrIdentity(from.MapIndex(*tlsKey))
		if tls.Kind() != reflect.Map {
			return from.Interface(), nil
		}
		moved := map[string]any{}
		for _, k := range tls.MapKeys() {
			k = helpers.ElemOrIdentity(k)
			if k.Kind() != reflect.String {
				return from.Interface(), nil
			}
			for _, name := range []string{"Username", "Password", "Mechanism"} {
				if helpers.MapStructureMatchName(k.String(), "SASL"+name) {
					moved[strings.ToLower(name)] = helpers.ElemOrIdentity(tls.MapIndex(k)).Interface()
					tls.SetMapIndex(k, reflect.Value{})
				}
			}
		}
		if len(moved) == 0 {
			return from.Interface(), nil
		}
		if saslKey != nil {
			sasl := helpers.ElemOrIdentity(from.MapIndex(*saslKey))
			if sasl.Kind() != reflect.Map {
				return nil, errors.New("SASL configuration should be a map")
			}
			if sasl.Len() > 0 {
				return nil, errors.New("SASL parameters cannot be both in TLS and SASL sections")
			}
		}
		from.SetMapIndex(reflect.ValueOf("sasl"), reflect.ValueOf(moved))
		return from.Interface(), nil
	}
}

func init() {
	helpers.RegisterMapstructureUnmarshallerHook(ConfigurationUnmarshallerHook())
}
