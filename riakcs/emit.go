// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import (
	"errors"
	"fmt"

	"riakcsmon/common/reporter"
)

// SubmitFunc submits one metric to the metric pipeline.
type SubmitFunc func(name string, value float64) error

// ErrUnknownKind is wrapped in a SubmissionError for a metric of unknown
// kind.
var ErrUnknownKind = errors.New("unknown metric kind")

// Emit submits each metric with the function matching its kind. A metric
// that cannot be submitted is logged and skipped. The returned errors are
// the skipped submissions.
func Emit(r *reporter.Reporter, metrics []Metric, submitCount, submitGauge SubmitFunc) []error {
	failed := []error{}
	for _, metric := range metrics {
		if err := submit(metric, submitCount, submitGauge); err != nil {
			r.Err(err).Str("metric", metric.Name).Msg("could not submit metric")
			failed = append(failed, err)
		}
	}
	return failed
}

func submit(metric Metric, submitCount, submitGauge SubmitFunc) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &SubmissionError{Metric: metric, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	var fn SubmitFunc
	switch metric.Kind {
	case KindCount:
		fn = submitCount
	case KindGauge:
		fn = submitGauge
	default:
		return &SubmissionError{Metric: metric, Err: ErrUnknownKind}
	}
	if err := fn(metric.Name, metric.Value); err != nil {
		return &SubmissionError{Metric: metric, Err: err}
	}
	return nil
}
