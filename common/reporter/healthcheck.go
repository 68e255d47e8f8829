// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package reporter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthcheckStatus represents an healthcheck status.
type HealthcheckStatus int

// HealthcheckResult combines a status and a reason
type HealthcheckResult struct {
	Status HealthcheckStatus `json:"status"`
	Reason string            `json:"reason"`
}

// MultipleHealthcheckResults aggregates the result of several healthchecks
type MultipleHealthcheckResults struct {
	Status  HealthcheckStatus            `json:"status"`
	Details map[string]HealthcheckResult `json:"details,omitempty"`
}

const (
	// HealthcheckOK says "OK"
	HealthcheckOK HealthcheckStatus = iota
	// HealthcheckWarning says there is a non-fatal condition
	HealthcheckWarning
	// HealthcheckError says there is a big problem with the component
	HealthcheckError
)

func (hs HealthcheckStatus) String() string {
	switch hs {
	case HealthcheckOK:
		return "ok"
	case HealthcheckWarning:
		return "warning"
	case HealthcheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText turns a status into text.
func (hs HealthcheckStatus) MarshalText() ([]byte, error) {
	return []byte(hs.String()), nil
}

// UnmarshalText parses a status from text.
func (hs *HealthcheckStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []HealthcheckStatus{HealthcheckOK, HealthcheckWarning, HealthcheckError} {
		if candidate.String() == string(text) {
			*hs = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown healthcheck status %q", string(text))
}

// HealthcheckFunc defines a function returning an healthcheck result.
type HealthcheckFunc func(context.Context) HealthcheckResult

// RegisterHealthcheck registers a new healthcheck. Registering a second
// healthcheck with the same name replaces the first one.
func (r *Reporter) RegisterHealthcheck(name string, hf HealthcheckFunc) {
	r.healthchecksLock.Lock()
	r.healthchecks[name] = hf
	r.healthchecksLock.Unlock()
}

// RunHealthchecks executes all healthchecks in parallel. The global status
// is the worst of the individual ones. A healthcheck still running when
// the context is done is reported as an error.
func (r *Reporter) RunHealthchecks(ctx context.Context) MultipleHealthcheckResults {
	r.healthchecksLock.Lock()
	checks := make(map[string]HealthcheckFunc, len(r.healthchecks))
	for name, hf := range r.healthchecks {
		checks[name] = hf
	}
	r.healthchecksLock.Unlock()

	type namedResult struct {
		name   string
		result HealthcheckResult
	}
	resultChan := make(chan namedResult, len(checks))
	for name, hf := range checks {
		go func() {
			resultChan <- namedResult{name, hf(ctx)}
		}()
	}

	results := MultipleHealthcheckResults{
		Status:  HealthcheckOK,
		Details: make(map[string]HealthcheckResult, len(checks)),
	}
collect:
	for range checks {
		select {
		case <-ctx.Done():
			break collect
		case one := <-resultChan:
			if ctx.Err() != nil {
				break collect
			}
			results.Details[one.name] = one.result
		}
	}
	for name := range checks {
		result, ok := results.Details[name]
		if !ok {
			result = HealthcheckResult{HealthcheckError, "timeout during check"}
			results.Details[name] = result
		}
		results.Status = max(results.Status, result.Status)
	}
	return results
}

// HealthcheckHTTPHandler answers with the healthcheck results as JSON. The
// HTTP status is 503 when the global status is an error.
func (r *Reporter) HealthcheckHTTPHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	results := r.RunHealthchecks(ctx)
	httpStatus := http.StatusOK
	if results.Status == HealthcheckError {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, results)
}
