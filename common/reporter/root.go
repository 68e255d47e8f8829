// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package reporter is a façade for reporting duties in riakcsmon.
//
// Such a façade currently includes logging, metrics and healthchecks.
package reporter

import (
	"sync"

	"riakcsmon/common/reporter/logger"
	"riakcsmon/common/reporter/metrics"
)

// Reporter contains the state for a reporter. It also supports the
// same interface as a logger.
type Reporter struct {
	logger.Logger
	metrics *metrics.Metrics

	healthchecks     map[string]HealthcheckFunc
	healthchecksLock sync.Mutex
}

// New creates a new reporter from a configuration.
func New(config Configuration) (*Reporter, error) {
	l, err := logger.New(config.Logging)
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(l, config.Metrics)
	if err != nil {
		return nil, err
	}
	return &Reporter{
		Logger:       l,
		metrics:      m,
		healthchecks: make(map[string]HealthcheckFunc),
	}, nil
}
