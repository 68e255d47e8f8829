// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riakcsmon/cmd"
	"riakcsmon/common/helpers"
	"riakcsmon/common/helpers/yaml"
)

type dummyConfiguration struct {
	Module1 dummyModule1Configuration
	Module2 dummyModule2Configuration
}
type dummyModule1Configuration struct {
	Listen  string `validate:"listen"`
	Topic   string
	Workers int `validate:"min=1"`
}
type dummyModule2Configuration struct {
	Details     dummyModule2DetailsConfiguration
	Elements    []dummyModule2ElementsConfiguration
	MoreDetails `mapstructure:",squash" yaml:",inline"`
}
type MoreDetails struct {
	Stuff string
}
type dummyModule2ElementsConfiguration struct {
	Name  string
	Gauge int
}
type dummyModule2DetailsConfiguration struct {
	Workers       int
	IntervalValue time.Duration
}

func dummyDefaultConfiguration() dummyConfiguration {
	return dummyConfiguration{
		Module1: dummyModule1Configuration{
			Listen:  "127.0.0.1:8080",
			Topic:   "nothingness",
			Workers: 100,
		},
		Module2: dummyModule2Configuration{
			MoreDetails: MoreDetails{
				Stuff: "hello",
			},
			Details: dummyModule2DetailsConfiguration{
				Workers:       1,
				IntervalValue: time.Minute,
			},
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error:\n%+v", err)
	}
	return path
}

func TestDump(t *testing.T) {
	config := `---
module1:
 topic: flows
module2:
 details:
  workers: 5
  interval-value: 20m
 stuff: bye
 elements:
  - name: first
    gauge: 67
  - name: second
`
	configFile := writeFile(t, t.TempDir(), "config.yaml", config)

	c := cmd.ConfigRelatedOptions{
		Path: configFile,
		Dump: true,
	}

	parsed := dummyDefaultConfiguration()
	out := bytes.NewBuffer([]byte{})
	if err := c.Parse(out, "dummy", &parsed); err != nil {
		t.Fatalf("Parse() error:\n%+v", err)
	}
	expected := dummyConfiguration{
		Module1: dummyModule1Configuration{
			Listen:  "127.0.0.1:8080",
			Topic:   "flows",
			Workers: 100,
		},
		Module2: dummyModule2Configuration{
			MoreDetails: MoreDetails{
				Stuff: "bye",
			},
			Details: dummyModule2DetailsConfiguration{
				Workers:       5,
				IntervalValue: 20 * time.Minute,
			},
			Elements: []dummyModule2ElementsConfiguration{
				{"first", 67},
				{"second", 0},
			},
		},
	}
	if diff := helpers.Diff(parsed, expected); diff != "" {
		t.Errorf("Parse() (-got, +want):\n%s", diff)
	}

	var gotRaw map[string]map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &gotRaw); err != nil {
		t.Fatalf("Unmarshal() error:\n%+v", err)
	}
	expectedRaw := map[string]any{
		"module1": map[string]any{
			"listen":  "127.0.0.1:8080",
			"topic":   "flows",
			"workers": 100,
		},
		"module2": map[string]any{
			"stuff": "bye",
			"details": map[string]any{
				"workers":       5,
				"intervalvalue": "20m0s",
			},
			"elements": []any{
				map[string]any{
					"name":  "first",
					"gauge": 67,
				},
				map[string]any{
					"name":  "second",
					"gauge": 0,
				},
			},
		},
	}
	if diff := helpers.Diff(gotRaw, expectedRaw); diff != "" {
		t.Errorf("Parse() (-got, +want):\n%s", diff)
	}
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "module1.yaml", `---
topic: flows
workers: 5
`)
	configFile := writeFile(t, dir, "config.yaml", `---
.shared: &shared
  name: shared
module1: !include "module1.yaml"
module2:
 elements:
  - *shared
`)
	c := cmd.ConfigRelatedOptions{Path: configFile}
	parsed := dummyDefaultConfiguration()
	if err := c.Parse(&bytes.Buffer{}, "dummy", &parsed); err != nil {
		t.Fatalf("Parse() error:\n%+v", err)
	}
	expected := dummyDefaultConfiguration()
	expected.Module1.Topic = "flows"
	expected.Module1.Workers = 5
	expected.Module2.Elements = []dummyModule2ElementsConfiguration{{Name: "shared"}}
	if diff := helpers.Diff(parsed, expected); diff != "" {
		t.Errorf("Parse() (-got, +want):\n%s", diff)
	}
}

func TestEnvOverride(t *testing.T) {
	config := `---
module1:
 topic: flows
module2:
 details:
  workers: 5
  interval-value: 20m
`
	configFile := writeFile(t, t.TempDir(), "config.yaml", config)

	t.Setenv("RIAKCSMON_DUMMY_MODULE1_LISTEN", "127.0.0.1:9000")
	t.Setenv("RIAKCSMON_DUMMY_MODULE1_TOPIC", "something")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_DETAILS_INTERVALVALUE", "10m")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_STUFF", "bye")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_ELEMENTS_0_NAME", "something")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_ELEMENTS_0_GAUGE", "18")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_ELEMENTS_1_NAME", "something else")
	t.Setenv("RIAKCSMON_DUMMY_MODULE2_ELEMENTS_1_GAUGE", "7")
	t.Setenv("RIAKCSMON_OTHER_MODULE1_TOPIC", "ignored")

	c := cmd.ConfigRelatedOptions{
		Path: configFile,
	}

	parsed := dummyDefaultConfiguration()
	if err := c.Parse(&bytes.Buffer{}, "dummy", &parsed); err != nil {
		t.Fatalf("Parse() error:\n%+v", err)
	}
	expected := dummyConfiguration{
		Module1: dummyModule1Configuration{
			Listen:  "127.0.0.1:9000",
			Topic:   "something",
			Workers: 100,
		},
		Module2: dummyModule2Configuration{
			MoreDetails: MoreDetails{
				Stuff: "bye",
			},
			Details: dummyModule2DetailsConfiguration{
				Workers:       5,
				IntervalValue: 10 * time.Minute,
			},
			Elements: []dummyModule2ElementsConfiguration{
				{"something", 18},
				{"something else", 7},
			},
		},
	}
	if diff := helpers.Diff(parsed, expected); diff != "" {
		t.Errorf("Parse() (-got, +want):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		Pos         helpers.Pos
		Description string
		Config      string
		Error       string
	}{
		{
			Pos:         helpers.Mark(),
			Description: "unknown key",
			Config:      "module1:\n  speed: 10\n",
			Error:       "unable to parse configuration: ",
		}, {
			Pos:         helpers.Mark(),
			Description: "invalid YAML",
			Config:      "module1: [\n",
			Error:       "unable to parse YAML configuration file: ",
		}, {
			Pos:         helpers.Mark(),
			Description: "invalid value",
			Config:      "module1:\n  workers: 0\n",
			Error:       "invalid configuration:\n",
		}, {
			Pos:         helpers.Mark(),
			Description: "missing include",
			Config:      "module1: !include nowhere.yaml\n",
			Error:       "unable to parse YAML configuration file: ",
		},
	}
	for idx, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			configFile := writeFile(t, dir, fmt.Sprintf("config%d.yaml", idx), tc.Config)
			c := cmd.ConfigRelatedOptions{Path: configFile}
			parsed := dummyDefaultConfiguration()
			err := c.Parse(&bytes.Buffer{}, "dummy", &parsed)
			if err == nil {
				t.Fatalf("%sParse() did not error", tc.Pos)
			}
			if !strings.HasPrefix(err.Error(), tc.Error) {
				t.Fatalf("%sParse() error %q does not start with %q", tc.Pos, err, tc.Error)
			}
		})
	}
}
