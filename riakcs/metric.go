// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import (
	"fmt"
	"strconv"
)

// Kind is the kind of a metric.
type Kind int

const (
	// KindUnknown is the zero value and cannot be submitted.
	KindUnknown Kind = iota
	// KindCount is a monotonic count.
	KindCount
	// KindGauge is a gauge.
	KindGauge
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindGauge:
		return "gauge"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// MarshalText turns a kind into text.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Metric is a metric extracted from the stats.
type Metric struct {
	Name  string
	Kind  Kind
	Value float64
}

// String formats a metric as a (name, kind, value) triple.
func (m Metric) String() string {
	return fmt.Sprintf("(%s, %s, %s)", m.Name, m.Kind, strconv.FormatFloat(m.Value, 'g', -1, 64))
}
