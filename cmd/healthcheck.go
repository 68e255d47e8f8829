// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"riakcsmon/common/reporter"
)

type healthcheckOptions struct {
	Host string
	Port uint16
}

// HealthcheckOptions stores the command-line option values for the healthcheck
// command.
var HealthcheckOptions healthcheckOptions

func init() {
	RootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().Uint16VarP(&HealthcheckOptions.Port, "port", "p", 9180,
		"HTTP port for health check")
	healthcheckCmd.Flags().StringVarP(&HealthcheckOptions.Host, "host", "H", "localhost",
		"HTTP host for health check")
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check healthness",
	Long:  `Check if riakcsmon is alive using the builtin HTTP endpoint.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := http.Get(fmt.Sprintf("http://%s:%d/api/v0/healthcheck",
			HealthcheckOptions.Host,
			HealthcheckOptions.Port))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		var results reporter.MultipleHealthcheckResults
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			return fmt.Errorf("unable to decode healthcheck: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			failing := []string{}
			for name, result := range results.Details {
				if result.Status == reporter.HealthcheckError {
					failing = append(failing, fmt.Sprintf("%s: %s", name, result.Reason))
				}
			}
			sort.Strings(failing)
			return fmt.Errorf("service is unhealthy (%s): %s", resp.Status, strings.Join(failing, ", "))
		}
		cmd.Println(results.Status)
		return nil
	},
}
