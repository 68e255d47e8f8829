// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package agent schedules Riak CS checks and forwards the emitted metrics
// to the configured sinks.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"gopkg.in/tomb.v2"

	"riakcsmon/agent/sink"
	"riakcsmon/common/daemon"
	"riakcsmon/common/httpserver"
	"riakcsmon/common/reporter"
	"riakcsmon/riakcs"
)

// Component represents the agent.
type Component struct {
	r      *reporter.Reporter
	d      *Dependencies
	t      tomb.Tomb
	config Configuration

	sinks     []sink.Sink
	instances []*instance
	metrics   metrics
}

// Dependencies define the dependencies of the agent.
type Dependencies struct {
	Daemon daemon.Component
	HTTP   *httpserver.Component
	Clock  clock.Clock
}

// instance is a checked Riak CS instance.
type instance struct {
	check *riakcs.Check
	tags  map[string]string

	lock   sync.RWMutex
	status InstanceStatus
}

// New creates a new agent component.
func New(r *reporter.Reporter, configuration Configuration, dependencies Dependencies) (*Component, error) {
	if dependencies.Clock == nil {
		dependencies.Clock = clock.New()
	}
	c := Component{
		r:      r,
		d:      &dependencies,
		config: configuration,
	}
	c.initMetrics()

	for idx, sinkConfiguration := range configuration.Sinks {
		s, err := sink.New(r, sinkConfiguration, sink.Dependencies{Daemon: dependencies.Daemon})
		if err != nil {
			return nil, fmt.Errorf("cannot create sink %d: %w", idx, err)
		}
		c.sinks = append(c.sinks, s)
	}
	targets := map[string]bool{}
	// The target labels metrics and statuses, so it has to be unique,
	// even for instances sharing a proxy with different roots.
	for _, instanceConfiguration := range configuration.Instances {
		target := instanceConfiguration.Target()
		if targets[target] {
			return nil, fmt.Errorf("instance %s configured twice (host and port identify an instance)", target)
		}
		targets[target] = true
		c.instances = append(c.instances, &instance{
			check:  riakcs.New(r, instanceConfiguration),
			tags:   instanceConfiguration.Tags,
			status: InstanceStatus{Target: target, LastStatus: StatusNever},
		})
	}

	c.r.RegisterHealthcheck("agent", c.healthcheck)
	if c.d.HTTP != nil {
		handlers := []gin.HandlerFunc{}
		if c.config.StatusCacheDuration > 0 {
			handlers = append(handlers, c.d.HTTP.CacheByRequestPath(c.config.StatusCacheDuration))
		}
		handlers = append(handlers, c.instancesHandlerFunc)
		c.d.HTTP.GinRouter.GET("/api/v0/agent/instances", handlers...)
	}

	c.d.Daemon.Track(&c.t, "agent")
	return &c, nil
}

// Start starts the sinks, then one check loop per instance.
func (c *Component) Start() error {
	c.r.Info().Int("instances", len(c.instances)).Msg("starting agent")
	for idx, s := range c.sinks {
		if err := s.Start(); err != nil {
			for _, started := range c.sinks[:idx] {
				started.Stop()
			}
			return fmt.Errorf("cannot start sink %d: %w", idx, err)
		}
	}

	for _, inst := range c.instances {
		c.t.Go(func() error {
			ticker := c.d.Clock.Ticker(c.config.Interval)
			defer ticker.Stop()
			for {
				c.runCycle(inst)
				select {
				case <-c.t.Dying():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return nil
}

// Stop stops the check loops, then the sinks.
func (c *Component) Stop() error {
	defer c.r.Info().Msg("agent stopped")
	c.r.Info().Msg("stopping agent")
	c.t.Kill(nil)
	err := c.t.Wait()
	for _, s := range c.sinks {
		if sinkErr := s.Stop(); sinkErr != nil {
			c.r.Err(sinkErr).Msg("cannot stop sink")
		}
	}
	return err
}

// runCycle runs one check cycle for an instance.
func (c *Component) runCycle(inst *instance) {
	target := inst.check.Target()
	start := c.d.Clock.Now()
	ctx, cancel := c.d.Clock.WithTimeout(c.t.Context(context.Background()), c.config.Timeout)
	defer cancel()

	submitted := 0
	submit := func(kind riakcs.Kind) riakcs.SubmitFunc {
		return func(name string, value float64) error {
			sample := sink.Sample{
				Time:     start,
				Instance: target,
				Tags:     inst.tags,
				Name:     name,
				Kind:     kind,
				Value:    value,
			}
			errs := []error{}
			for _, s := range c.sinks {
				if err := s.Submit(sample); err != nil {
					errs = append(errs, err)
				}
			}
			if len(errs) > 0 {
				return errors.Join(errs...)
			}
			submitted++
			c.metrics.submittedMetrics.WithLabelValues(target, kind.String()).Inc()
			return nil
		}
	}
	result, err := inst.check.Run(ctx, submit(riakcs.KindCount), submit(riakcs.KindGauge))
	c.metrics.cycleDuration.WithLabelValues(target).Observe(c.d.Clock.Since(start).Seconds())

	status := InstanceStatus{
		Target:            target,
		LastCycle:         start,
		LastStatus:        StatusOK,
		Submitted:         submitted,
		SkippedFields:     len(result.SkippedFields),
		FailedSubmissions: len(result.FailedSubmissions),
	}
	if err != nil {
		status.LastStatus = StatusError
		status.LastError = err.Error()
		c.r.Err(err).Str("instance", target).Msg("check cycle failed")
	}
	c.metrics.cycles.WithLabelValues(target, status.LastStatus).Inc()
	c.metrics.skippedFields.WithLabelValues(target).Add(float64(status.SkippedFields))
	c.metrics.failedSubmissions.WithLabelValues(target).Add(float64(status.FailedSubmissions))

	inst.lock.Lock()
	inst.status = status
	inst.lock.Unlock()
}

// Statuses returns the status of each instance.
func (c *Component) Statuses() []InstanceStatus {
	statuses := make([]InstanceStatus, 0, len(c.instances))
	for _, inst := range c.instances {
		inst.lock.RLock()
		statuses = append(statuses, inst.status)
		inst.lock.RUnlock()
	}
	return statuses
}

func (c *Component) healthcheck(_ context.Context) reporter.HealthcheckResult {
	failing := []string{}
	for _, status := range c.Statuses() {
		if status.LastStatus == StatusError {
			failing = append(failing, status.Target)
		}
	}
	if len(failing) > 0 {
		return reporter.HealthcheckResult{
			Status: reporter.HealthcheckWarning,
			Reason: fmt.Sprintf("last check failed for %s", strings.Join(failing, ", ")),
		}
	}
	return reporter.HealthcheckResult{
		Status: reporter.HealthcheckOK,
		Reason: fmt.Sprintf("%d instances checked every %s", len(c.instances), c.config.Interval.Round(time.Second)),
	}
}
