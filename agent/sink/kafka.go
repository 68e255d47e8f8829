// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"golang.org/x/time/rate"
	"gopkg.in/tomb.v2"

	"riakcsmon/common/kafka"
	"riakcsmon/common/reporter"
)

// KafkaConfiguration describes a sink publishing samples to Kafka.
type KafkaConfiguration struct {
	kafka.Configuration `mapstructure:",squash" yaml:",inline"`
	// FlushInterval tells how often to flush pending data to Kafka.
	FlushInterval time.Duration `validate:"min=100ms"`
	// FlushBytes tells to flush when there are many bytes to write
	FlushBytes int `validate:"min=1000"`
	// MaxMessageBytes is the maximum permitted size of a message.
	// Should be set equal or smaller than broker's
	// `message.max.bytes`.
	MaxMessageBytes int `validate:"min=1"`
	// CompressionCodec defines the compression to use.
	CompressionCodec CompressionCodec
	// QueueSize defines the size of the channel used to send to Kafka.
	QueueSize int `validate:"min=1"`
}

// DefaultKafkaConfiguration represents the default configuration for the
// Kafka sink.
func DefaultKafkaConfiguration() SinkConfiguration {
	return &KafkaConfiguration{
		Configuration:    kafka.DefaultConfiguration(),
		FlushInterval:    time.Second,
		FlushBytes:       int(sarama.MaxRequestSize) - 1,
		MaxMessageBytes:  1000000,
		CompressionCodec: CompressionCodec(sarama.CompressionNone),
		QueueSize:        256,
	}
}

// CompressionCodec represents a compression codec.
type CompressionCodec sarama.CompressionCodec

// UnmarshalText produces a compression codec
func (cc *CompressionCodec) UnmarshalText(text []byte) error {
	codecs := map[string]sarama.CompressionCodec{
		"none":   sarama.CompressionNone,
		"gzip":   sarama.CompressionGZIP,
		"snappy": sarama.CompressionSnappy,
		"lz4":    sarama.CompressionLZ4,
		"zstd":   sarama.CompressionZSTD,
	}
	codec, ok := codecs[string(text)]
	if !ok {
		return fmt.Errorf("cannot parse %q as a compression codec", string(text))
	}
	*cc = CompressionCodec(codec)
	return nil
}

// String turns a compression codec into a string
func (cc CompressionCodec) String() string {
	return sarama.CompressionCodec(cc).String()
}

// MarshalText turns a compression codec into a string
func (cc CompressionCodec) MarshalText() ([]byte, error) {
	return []byte(cc.String()), nil
}

type kafkaSink struct {
	r      *reporter.Reporter
	d      Dependencies
	t      tomb.Tomb
	config KafkaConfiguration

	kafkaConfig         *sarama.Config
	kafkaProducer       sarama.AsyncProducer
	createKafkaProducer func() (sarama.AsyncProducer, error)
	metrics             kafkaMetrics
}

// New creates a Kafka sink. The producer is created on start.
func (c KafkaConfiguration) New(r *reporter.Reporter, dependencies Dependencies) (Sink, error) {
	sarama.Logger = kafka.NewLogger(r)

	kafkaConfig, err := kafka.NewConfig(c.Configuration)
	if err != nil {
		return nil, err
	}
	kafkaConfig.Metadata.AllowAutoTopicCreation = true
	kafkaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes
	kafkaConfig.Producer.Compression = sarama.CompressionCodec(c.CompressionCodec)
	kafkaConfig.Producer.Return.Successes = false
	kafkaConfig.Producer.Return.Errors = true
	kafkaConfig.Producer.Flush.Bytes = c.FlushBytes
	kafkaConfig.Producer.Flush.Frequency = c.FlushInterval
	kafkaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	kafkaConfig.ChannelBufferSize = c.QueueSize
	if err := kafkaConfig.Validate(); err != nil {
		return nil, fmt.Errorf("cannot validate Kafka configuration: %w", err)
	}

	s := kafkaSink{
		r:           r,
		d:           dependencies,
		config:      c,
		kafkaConfig: kafkaConfig,
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	s.createKafkaProducer = func() (sarama.AsyncProducer, error) {
		return sarama.NewAsyncProducer(s.config.Brokers, s.kafkaConfig)
	}
	s.d.Daemon.Track(&s.t, "agent/sink/kafka")
	return &s, nil
}

func (s *kafkaSink) Start() error {
	s.r.Info().Msg("starting Kafka sink")
	kafkaProducer, err := s.createKafkaProducer()
	if err != nil {
		s.r.Err(err).
			Str("brokers", strings.Join(s.config.Brokers, ",")).
			Msg("unable to create async producer")
		return fmt.Errorf("unable to create Kafka async producer: %w", err)
	}
	s.kafkaProducer = kafkaProducer

	// Main loop
	s.t.Go(func() error {
		defer kafkaProducer.Close()
		errLimiter := rate.NewLimiter(rate.Every(10*time.Second), 3)
		dying := s.t.Dying()
		for {
			select {
			case <-dying:
				s.r.Debug().Msg("stop error logger")
				return nil
			case msg := <-kafkaProducer.Errors():
				if msg != nil {
					s.metrics.errors.WithLabelValues(msg.Error()).Inc()
					if errLimiter.Allow() {
						s.r.Err(msg.Err).
							Str("topic", msg.Msg.Topic).
							Int64("offset", msg.Msg.Offset).
							Int32("partition", msg.Msg.Partition).
							Msg("Kafka producer error")
					}
				}
			}
		}
	})
	return nil
}

func (s *kafkaSink) Stop() error {
	defer s.r.Info().Msg("Kafka sink stopped")
	s.r.Info().Msg("stopping Kafka sink")
	s.t.Kill(nil)
	err := s.t.Wait()
	s.r.UnregisterMetricCollector(&s.metrics.kafkaMetrics)
	return err
}

// ErrKafkaQueueFull is returned when a sample cannot be queued for Kafka.
var ErrKafkaQueueFull = errors.New("kafka queue is full")

// Submit queues a sample for Kafka. The sample is dropped when the queue
// is full.
func (s *kafkaSink) Submit(sample Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("cannot encode sample: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: s.config.Topic,
		Key:   sarama.StringEncoder(sample.Instance),
		Value: sarama.ByteEncoder(payload),
	}
	select {
	case s.kafkaProducer.Input() <- msg:
	case <-s.t.Dying():
		return errors.New("kafka sink is stopping")
	default:
		s.metrics.dropped.WithLabelValues(sample.Instance).Inc()
		return ErrKafkaQueueFull
	}
	s.metrics.bytesSent.WithLabelValues(sample.Instance).Add(float64(len(payload)))
	s.metrics.messagesSent.WithLabelValues(sample.Instance).Inc()
	return nil
}

type kafkaMetrics struct {
	messagesSent *reporter.CounterVec
	bytesSent    *reporter.CounterVec
	dropped      *reporter.CounterVec
	errors       *reporter.CounterVec

	kafkaMetrics kafka.Metrics
}

func (s *kafkaSink) initMetrics() error {
	s.metrics.messagesSent = s.r.CounterVec(
		reporter.CounterOpts{
			Name: "kafka_sent_messages_total",
			Help: "Number of messages sent for a given instance.",
		},
		[]string{"instance"},
	)
	s.metrics.bytesSent = s.r.CounterVec(
		reporter.CounterOpts{
			Name: "kafka_sent_bytes_total",
			Help: "Number of bytes sent for a given instance.",
		},
		[]string{"instance"},
	)
	s.metrics.dropped = s.r.CounterVec(
		reporter.CounterOpts{
			Name: "kafka_dropped_messages_total",
			Help: "Number of messages dropped because the queue was full.",
		},
		[]string{"instance"},
	)
	s.metrics.errors = s.r.CounterVec(
		reporter.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Number of errors when sending.",
		},
		[]string{"error"},
	)
	return s.metrics.kafkaMetrics.Init(s.r, s.kafkaConfig.MetricRegistry)
}
