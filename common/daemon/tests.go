// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package daemon

import (
	"testing"

	"gopkg.in/tomb.v2"
)

// MockComponent is a daemon component that does nothing. It doesn't
// need to be started to work.
type MockComponent struct {
	terminator
}

// NewMock will create a daemon component that does nothing.
func NewMock(t *testing.T) Component {
	t.Helper()
	return &MockComponent{terminator: newTerminator()}
}

// Start does nothing.
func (c *MockComponent) Start() error {
	return nil
}

// Stop terminates the mock.
func (c *MockComponent) Stop() error {
	c.Terminate()
	return nil
}

// Track does nothing
func (c *MockComponent) Track(*tomb.Tomb, string) {}
