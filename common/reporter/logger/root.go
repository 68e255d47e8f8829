// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package logger handles logging for riakcsmon.
//
// This is a thin wrapper around zerolog. Each event gets a "caller" and a
// "module" field. The output, format and level are those of the global
// zerolog logger, which is set up by the command line.
package logger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"riakcsmon/common/reporter/stack"
)

// Logger is a logger instance. It is compatible with the interface
// from zerolog by design.
type Logger struct {
	zerolog.Logger
}

// New creates a new logger
func New(config Configuration) (Logger, error) {
	logger := log.Logger.Hook(contextHook{})
	return Logger{logger}, nil
}

type contextHook struct{}

// Run adds more context to an event, including "module" and "caller".
func (h contextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	callStack := stack.Callers()
	callStack = callStack[3:] // there is a test to check it works
	caller := callStack[0].SourceFile(true)
	e.Str("caller", caller)
	for _, call := range callStack {
		module := call.FunctionName()
		if !strings.HasPrefix(module, stack.ModuleName) {
			continue
		}
		module = strings.SplitN(module, ".", 2)[0]
		e.Str("module", module)
		break
	}
}
