// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package helpers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
)

// HTTPEndpointCases describes case for TestHTTPEndpoints
type HTTPEndpointCases []struct {
	Pos         Pos
	Description string
	Method      string
	URL         string

	ContentType string
	StatusCode  int
	FirstLines  []string
	JSONOutput  any
}

// TestHTTPEndpoints test a few HTTP endpoints
func TestHTTPEndpoints(t *testing.T, serverAddr net.Addr, cases HTTPEndpointCases) {
	t.Helper()
	for _, tc := range cases {
		desc := tc.Description
		if desc == "" {
			desc = tc.URL
		}
		t.Run(desc, func(t *testing.T) {
			t.Helper()
			if tc.FirstLines != nil && tc.JSONOutput != nil {
				t.Fatalf("%sCannot have both FirstLines and JSONOutput", tc.Pos)
			}
			if tc.Method == "" {
				tc.Method = "GET"
			}
			req, _ := http.NewRequest(tc.Method,
				fmt.Sprintf("http://%s%s", serverAddr, tc.URL),
				nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("%s%s %s:\n%+v", tc.Pos, tc.Method, tc.URL, err)
			}
			defer resp.Body.Close()

			if tc.StatusCode == 0 {
				tc.StatusCode = 200
			}
			if resp.StatusCode != tc.StatusCode {
				t.Errorf("%s%s %s: got status code %d, not %d",
					tc.Pos, tc.Method, tc.URL, resp.StatusCode, tc.StatusCode)
			}
			if tc.JSONOutput != nil {
				tc.ContentType = "application/json; charset=utf-8"
			}
			if tc.ContentType != "" {
				gotContentType := resp.Header.Get("Content-Type")
				if gotContentType != tc.ContentType {
					t.Errorf("%s%s %s Content-Type (-got, +want):\n-%s\n+%s",
						tc.Pos, tc.Method, tc.URL, gotContentType, tc.ContentType)
				}
			}
			if tc.JSONOutput == nil {
				reader := bufio.NewScanner(resp.Body)
				got := []string{}
				for reader.Scan() && len(got) < len(tc.FirstLines) {
					got = append(got, reader.Text())
				}
				if tc.FirstLines == nil {
					tc.FirstLines = []string{}
				}
				if diff := Diff(got, tc.FirstLines); diff != "" {
					t.Errorf("%s%s %s (-got, +want):\n%s", tc.Pos, tc.Method, tc.URL, diff)
				}
				return
			}

			var got any
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("%s%s %s:\n%+v", tc.Pos, tc.Method, tc.URL, err)
			}
			// Encode/decode expected to compare JSON stuff
			var expected any
			expectedBytes, err := json.Marshal(tc.JSONOutput)
			if err != nil {
				t.Fatalf("json.Marshal() error:\n%+v", err)
			}
			if err := json.Unmarshal(expectedBytes, &expected); err != nil {
				t.Fatalf("json.Unmarshal() error:\n%+v", err)
			}
			if diff := Diff(got, expected); diff != "" {
				t.Fatalf("%s%s %s (-got, +want):\n%s", tc.Pos, tc.Method, tc.URL, diff)
			}
		})
	}
}
