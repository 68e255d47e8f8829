// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import "fmt"

// ConnectionError is returned when the S3 client cannot be built.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("error connecting to %s: %s", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FetchError is returned when the stats object cannot be retrieved.
type FetchError struct {
	Target string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error retrieving stats from %s: %s", e.Target, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is returned when the stats are not a JSON object. Target is
// only known once the error reaches the check.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("error decoding stats: %s", e.Err)
	}
	return fmt.Sprintf("error decoding stats from %s: %s", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MalformedFieldError is returned for a known field whose value does not
// have the expected shape. The field is skipped.
type MalformedFieldError struct {
	Field    string
	Expected int
	Got      int
	Err      error
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed field %q: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed field %q: expected %d values, got %d", e.Field, e.Expected, e.Got)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// SubmissionError is returned when a metric cannot be submitted. The
// metric is skipped.
type SubmissionError struct {
	Metric Metric
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("could not submit metric %s: %s", e.Metric, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
