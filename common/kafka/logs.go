// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package kafka

import (
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"riakcsmon/common/reporter"
)

// logger turns sarama logs into debug logs.
type logger struct {
	r *reporter.Reporter
}

// NewLogger creates a new sarama logger using a reporter.
func NewLogger(r *reporter.Reporter) sarama.StdLogger {
	return &logger{r: r}
}

func (l *logger) Print(v ...any) {
	if e := l.r.Debug(); e.Enabled() {
		e.Msg(strings.TrimSuffix(fmt.Sprint(v...), "\n"))
	}
}

func (l *logger) Printf(format string, v ...any) {
	if e := l.r.Debug(); e.Enabled() {
		e.Msg(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
	}
}

func (l *logger) Println(v ...any) {
	if e := l.r.Debug(); e.Enabled() {
		e.Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
	}
}
