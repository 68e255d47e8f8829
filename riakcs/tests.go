// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package riakcs

import (
	"net"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
)

// ProxiedConfiguration returns an instance configuration using the
// provided test server as the Riak CS proxy. Path-style addressing is
// enabled so the server can be a fake S3 server.
func ProxiedConfiguration(t *testing.T, ts *httptest.Server) Configuration {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("url.Parse() error:\n%+v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("SplitHostPort() error:\n%+v", err)
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		t.Fatalf("ParseUint() error:\n%+v", err)
	}
	config := DefaultConfiguration()
	config.Host = host
	config.Port = uint16(portNum)
	config.AccessID = "admin"
	config.AccessSecret = "secret"
	config.PathStyle = true
	return config
}
