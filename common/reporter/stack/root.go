// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

// Package stack inspects the call stack. It is used to name loggers and
// metrics after the calling package.
package stack

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

// Call is the program counter of a function invocation.
type Call uintptr

// Trace is a sequence of function invocations, innermost first.
type Trace []Call

const maxDepth = 100

// Callers returns the stack of the caller.
func Callers() Trace {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(2, pcs)
	trace := make(Trace, n)
	for i, pc := range pcs[:n] {
		trace[i] = Call(pc)
	}
	return trace
}

func (pc Call) function() *runtime.Func {
	return runtime.FuncForPC(uintptr(pc) - 1)
}

// FunctionName returns the fully qualified name of the function,
// including its package path.
func (pc Call) FunctionName() string {
	fn := pc.function()
	if fn == nil {
		return "(nofunc)"
	}
	return fn.Name()
}

// SourceFile returns the source file of the call point, as an import path
// followed by the file name. The line number is appended when requested.
func (pc Call) SourceFile(withLine bool) string {
	fn := pc.function()
	if fn == nil {
		return "(nosource)"
	}
	file, line := fn.FileLine(uintptr(pc) - 1)
	name := fn.Name()

	// Keep as many directories as the import path has.
	depth := strings.Count(name, "/")
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) > depth+1 {
		parts = parts[len(parts)-depth-1:]
	}
	module, _, _ := strings.Cut(name, "/")
	module, _, _ = strings.Cut(module, ".")
	source := module + "/" + strings.Join(parts, "/")
	if withLine {
		return fmt.Sprintf("%s:%d", source, line)
	}
	return source
}

type marker struct{}

// ModuleName is the path of the current module, like "riakcsmon".
var ModuleName = strings.TrimSuffix(reflect.TypeOf(marker{}).PkgPath(), "/common/reporter/stack")
