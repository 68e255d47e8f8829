// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics handles metrics for riakcsmon.
//
// This is a wrapper around Prometheus Go client. Metrics registered through
// a factory are prefixed with the name of the module registering them.
package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riakcsmon/common/reporter/logger"
	"riakcsmon/common/reporter/stack"
)

// Metrics represents the internal state of the metric subsystem.
type Metrics struct {
	logger           logger.Logger
	config           Configuration
	registry         *prometheus.Registry
	factoryCache     map[string]*Factory
	factoryCacheLock sync.RWMutex
}

// New creates a new metric registry with Go and process collectors.
func New(logger logger.Logger, configuration Configuration) (*Metrics, error) {
	reg := prometheus.NewRegistry()
	if !configuration.DisableRuntimeMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector(collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsScheduler)))
	}
	return &Metrics{
		logger:       logger,
		config:       configuration,
		registry:     reg,
		factoryCache: make(map[string]*Factory),
	}, nil
}

// HTTPHandler returns an handler to serve Prometheus metrics.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: promHTTPLogger{m.logger},
	})
}

// getPrefix turns a function name into a metric prefix:
// riakcsmon/agent/sink.(*Component).Start becomes riakcsmon_agent_sink_.
func getPrefix(module string) string {
	moduleName := stack.ModuleName
	if strings.HasPrefix(module, stack.ModuleName) {
		moduleName = strings.SplitN(module, ".", 2)[0]
	}
	moduleName = strings.NewReplacer("/", "_", ".", "_").Replace(moduleName)
	return fmt.Sprintf("%s_", moduleName)
}

// Factory returns a factory to register new metrics. It includes the
// module of the caller as an automatic prefix. skipCallstack tells how many
// frames to skip to find the caller.
func (m *Metrics) Factory(skipCallstack int) *Factory {
	callStack := stack.Callers()
	call := callStack[1+skipCallstack] // there is a test to check it works
	module := call.FunctionName()

	m.factoryCacheLock.RLock()
	factory, ok := m.factoryCache[module]
	m.factoryCacheLock.RUnlock()
	if ok {
		return factory
	}

	m.factoryCacheLock.Lock()
	defer m.factoryCacheLock.Unlock()
	factory = &Factory{
		prefix:   getPrefix(module),
		registry: m.registry,
	}
	m.factoryCache[module] = factory
	return factory
}

// Desc allocates a new metric description. Like for factory, names are
// prefixed with the module name. Unlike factory, there is no cache.
func (m *Metrics) Desc(skipCallstack int, name, help string, variableLabels []string) *prometheus.Desc {
	callStack := stack.Callers()
	call := callStack[1+skipCallstack]
	prefix := getPrefix(call.FunctionName())
	return prometheus.NewDesc(prefix+name, help, variableLabels, nil)
}

// Collector registers a custom collector.
func (m *Metrics) Collector(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Unregister unregisters a custom collector.
func (m *Metrics) Unregister(c prometheus.Collector) bool {
	return m.registry.Unregister(c)
}
