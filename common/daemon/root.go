// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package daemon handles the process lifecycle. The process terminates as
// soon as a tracked component dies or a termination signal is received.
package daemon

import (
	"context"
	"os/signal"
	"syscall"

	"gopkg.in/tomb.v2"

	"riakcsmon/common/reporter"
)

// Component is the interface the daemon component provides.
type Component interface {
	Start() error
	Stop() error
	// Track registers a tomb whose death terminates the daemon. It is
	// only used before Start().
	Track(t *tomb.Tomb, who string)

	// Terminated returns a channel closed when the daemon has to stop.
	Terminated() <-chan struct{}
	// Terminate requests termination. It can be called several times.
	Terminate()
}

// terminator implements the termination part of a daemon component.
type terminator struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newTerminator() terminator {
	ctx, cancel := context.WithCancel(context.Background())
	return terminator{ctx: ctx, cancel: cancel}
}

func (t terminator) Terminated() <-chan struct{} { return t.ctx.Done() }
func (t terminator) Terminate()               { t.cancel() }

type component struct {
	terminator
	r       *reporter.Reporter
	tracked []trackedTomb
}

type trackedTomb struct {
	tomb *tomb.Tomb
	who  string
}

// New creates a new daemon component.
func New(r *reporter.Reporter) (Component, error) {
	return &component{
		terminator: newTerminator(),
		r:          r,
	}, nil
}

// Start watches the tracked tombs and the termination signals.
func (c *component) Start() error {
	for _, tracked := range c.tracked {
		go c.watch(tracked)
	}
	go func() {
		ctx, stop := signal.NotifyContext(c.ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		if c.ctx.Err() == nil {
			c.r.Info().Msg("signal received, quitting")
			c.Terminate()
		}
	}()
	return nil
}

func (c *component) watch(tracked trackedTomb) {
	select {
	case <-tracked.tomb.Dying():
	case <-c.Terminated():
		return
	}
	if err := tracked.tomb.Err(); err != nil {
		c.r.Err(err).Str("component", tracked.who).Msg("component error, quitting")
	} else {
		c.r.Debug().Str("component", tracked.who).Msg("component shutting down, quitting")
	}
	c.Terminate()
}

// Stop terminates the daemon.
func (c *component) Stop() error {
	c.Terminate()
	return nil
}

func (c *component) Track(t *tomb.Tomb, who string) {
	c.tracked = append(c.tracked, trackedTomb{tomb: t, who: who})
}
