// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package riakcs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
	"riakcsmon/common/s3"
)

func TestRun(t *testing.T) {
	ts := s3.NewFakeServer(t, s3.FakeObject{
		Bucket:  "riak-cs",
		Key:     "stats",
		Content: []byte(`{"object_get": [10, 1.1, 2.2, 3.3, 4.4, 5.5], "object_put": [1], "request_pool": [2, 0, 5]}`),
	})
	r := reporter.NewMock(t)
	c := New(r, ProxiedConfiguration(t, ts))
	rc := recorder{}

	result, err := c.Run(context.Background(), rc.submit(KindCount), rc.submit(KindGauge))
	if err != nil {
		t.Fatalf("Run() error:\n%+v", err)
	}
	expected := []Metric{
		{"riakcs.object_get", KindCount, 10},
		{"riakcs.object_get_rate", KindGauge, 1.1},
		{"riakcs.object_get_latency_mean", KindGauge, 2.2},
		{"riakcs.object_get_latency_median", KindGauge, 3.3},
		{"riakcs.object_get_latency_95", KindGauge, 4.4},
		{"riakcs.object_get_latency_99", KindGauge, 5.5},
		{"riakcs.request_pool_workers", KindGauge, 2},
		{"riakcs.request_pool_overflow", KindGauge, 0},
		{"riakcs.request_pool_size", KindGauge, 5},
	}
	if diff := helpers.Diff(rc.submitted, expected); diff != "" {
		t.Fatalf("Run() submitted (-got, +want):\n%s", diff)
	}
	if diff := helpers.Diff(result.Metrics, expected); diff != "" {
		t.Fatalf("Run() metrics (-got, +want):\n%s", diff)
	}
	if len(result.SkippedFields) != 1 || len(result.FailedSubmissions) != 0 {
		t.Fatalf("Run() skipped %d fields and failed %d submissions, expected 1 and 0",
			len(result.SkippedFields), len(result.FailedSubmissions))
	}
}

func TestRunErrors(t *testing.T) {
	ts := s3.NewFakeServer(t, s3.FakeObject{Bucket: "riak-cs", Key: "other", Content: []byte("{}")})
	cases := []struct {
		Pos         helpers.Pos
		Description string
		Config      func(Configuration) Configuration
		Handler     http.Handler
		Check       func(error) bool
		Message     string
	}{
		{
			Pos:         helpers.Mark(),
			Description: "invalid configuration",
			Config: func(c Configuration) Configuration {
				c.Region = ""
				return c
			},
			Check: func(err error) bool {
				var e *ConnectionError
				return errors.As(err, &e)
			},
			Message: "error connecting to ",
		}, {
			Pos:         helpers.Mark(),
			Description: "missing key",
			Config:      func(c Configuration) Configuration { return c },
			Check: func(err error) bool {
				var e *FetchError
				return errors.As(err, &e) && s3.ErrorCode(err) == "NoSuchKey"
			},
			Message: "error retrieving stats from ",
		}, {
			Pos:         helpers.Mark(),
			Description: "invalid JSON",
			Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not JSON"))
			}),
			Config: func(c Configuration) Configuration { return c },
			Check: func(err error) bool {
				var e *DecodeError
				return errors.As(err, &e)
			},
			Message: "error decoding stats from ",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			proxy := ts
			if tc.Handler != nil {
				proxy = httptest.NewServer(tc.Handler)
				defer proxy.Close()
			}
			r := reporter.NewMock(t)
			config := tc.Config(ProxiedConfiguration(t, proxy))
			c := New(r, config)
			rc := recorder{}
			_, err := c.Run(context.Background(), rc.submit(KindCount), rc.submit(KindGauge))
			if err == nil {
				t.Fatalf("%sRun() did not error", tc.Pos)
			}
			if !tc.Check(err) {
				t.Fatalf("%sRun() error of unexpected type: %v", tc.Pos, err)
			}
			expectedPrefix := tc.Message + config.Target() + ": "
			if got := err.Error(); !strings.HasPrefix(got, expectedPrefix) {
				t.Fatalf("%sRun() error %q does not start with %q", tc.Pos, got, expectedPrefix)
			}
			if len(rc.submitted) != 0 {
				t.Fatalf("%sRun() submitted %d metrics", tc.Pos, len(rc.submitted))
			}
		})
	}
}

func TestRunAddressing(t *testing.T) {
	cases := []struct {
		Pos          helpers.Pos
		Description  string
		Config       func(Configuration) Configuration
		ExpectedHost string
		ExpectedPath string
	}{
		{
			Pos:          helpers.Mark(),
			Description:  "default",
			Config:       func(c Configuration) Configuration { return c },
			ExpectedHost: "riak-cs.s3.amazonaws.com",
			ExpectedPath: "/stats",
		}, {
			Pos:         helpers.Mark(),
			Description: "alternate root",
			Config: func(c Configuration) Configuration {
				c.S3Root = "cs.example.com"
				return c
			},
			ExpectedHost: "riak-cs.cs.example.com",
			ExpectedPath: "/stats",
		}, {
			Pos:         helpers.Mark(),
			Description: "path style",
			Config: func(c Configuration) Configuration {
				c.S3Root = "cs.example.com:8000"
				c.PathStyle = true
				return c
			},
			ExpectedHost: "cs.example.com:8000",
			ExpectedPath: "/riak-cs/stats",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			var gotHost, gotPath string
			proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				gotHost = req.Host
				gotPath = req.URL.Path
				w.Write([]byte(`{"request_pool": [1, 2, 3]}`))
			}))
			defer proxy.Close()
			config := ProxiedConfiguration(t, proxy)
			config.PathStyle = false
			r := reporter.NewMock(t)
			c := New(r, tc.Config(config))
			rc := recorder{}
			if _, err := c.Run(context.Background(), rc.submit(KindCount), rc.submit(KindGauge)); err != nil {
				t.Fatalf("%sRun() error:\n%+v", tc.Pos, err)
			}
			if diff := helpers.Diff([]string{gotHost, gotPath},
				[]string{tc.ExpectedHost, tc.ExpectedPath}); diff != "" {
				t.Fatalf("%sRun() request (-got, +want):\n%s", tc.Pos, diff)
			}
			if len(rc.submitted) != 3 {
				t.Fatalf("%sRun() submitted %d metrics, expected 3", tc.Pos, len(rc.submitted))
			}
		})
	}
}
