// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
	"riakcsmon/common/s3"
	"riakcsmon/riakcs"
)

func TestCheckOnce(t *testing.T) {
	good := s3.NewFakeServer(t, s3.FakeObject{
		Bucket:  "riak-cs",
		Key:     "stats",
		Content: []byte(`{"object_get": [10, 1.1, 2.2, 3.3, 4.4, 5.5], "request_pool": [2, 0, 5]}`),
	})
	empty := s3.NewFakeServer(t)
	goodInstance := riakcs.ProxiedConfiguration(t, good)
	emptyInstance := riakcs.ProxiedConfiguration(t, empty)

	r := reporter.NewMock(t)
	config := AgentConfiguration{}
	config.Reset()

	t.Run("success", func(t *testing.T) {
		config.Instances = []riakcs.Configuration{goodInstance}
		out := new(bytes.Buffer)
		if err := checkOnce(context.Background(), r, config, out); err != nil {
			t.Fatalf("checkOnce() error:\n%+v", err)
		}
		target := goodInstance.Target()
		expected := []string{
			fmt.Sprintf("%s riakcs.object_get count 10", target),
			fmt.Sprintf("%s riakcs.object_get_rate gauge 1.1", target),
			fmt.Sprintf("%s riakcs.object_get_latency_mean gauge 2.2", target),
			fmt.Sprintf("%s riakcs.object_get_latency_median gauge 3.3", target),
			fmt.Sprintf("%s riakcs.object_get_latency_95 gauge 4.4", target),
			fmt.Sprintf("%s riakcs.object_get_latency_99 gauge 5.5", target),
			fmt.Sprintf("%s riakcs.request_pool_workers gauge 2", target),
			fmt.Sprintf("%s riakcs.request_pool_overflow gauge 0", target),
			fmt.Sprintf("%s riakcs.request_pool_size gauge 5", target),
		}
		got := strings.Split(strings.TrimSpace(out.String()), "\n")
		if diff := helpers.Diff(got, expected); diff != "" {
			t.Fatalf("checkOnce() (-got, +want):\n%s", diff)
		}
	})

	t.Run("one failure", func(t *testing.T) {
		config.Instances = []riakcs.Configuration{emptyInstance, goodInstance}
		out := new(bytes.Buffer)
		err := checkOnce(context.Background(), r, config, out)
		if err == nil {
			t.Fatal("checkOnce() did not error")
		}
		if diff := helpers.Diff(err.Error(), "1 of 2 checks failed"); diff != "" {
			t.Fatalf("checkOnce() error (-got, +want):\n%s", diff)
		}
		if lines := strings.Count(out.String(), "\n"); lines != 9 {
			t.Fatalf("checkOnce() printed %d lines, expected 9", lines)
		}
	})
}

func TestCheckCommand(t *testing.T) {
	ts := s3.NewFakeServer(t, s3.FakeObject{
		Bucket:  "riak-cs",
		Key:     "stats",
		Content: []byte(`{"request_pool": [1, 2, 3]}`),
	})
	instance := riakcs.ProxiedConfiguration(t, ts)
	configFile := writeTestFile(t, "riakcsmon.yaml", fmt.Sprintf(`---
instances:
  - host: %s
    port: %d
    access_id: admin
    access_secret: secret
    path_style: true
`, instance.Host, instance.Port))

	root := RootCmd
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"check", configFile})
	if err := root.Execute(); err != nil {
		t.Fatalf("`check` error:\n%+v", err)
	}
	expected := fmt.Sprintf("%s riakcs.request_pool_workers gauge 1\n"+
		"%s riakcs.request_pool_overflow gauge 2\n"+
		"%s riakcs.request_pool_size gauge 3\n",
		instance.Target(), instance.Target(), instance.Target())
	if diff := helpers.Diff(buf.String(), expected); diff != "" {
		t.Fatalf("`check` (-got, +want):\n%s", diff)
	}
}
