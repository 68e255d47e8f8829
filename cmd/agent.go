// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"riakcsmon/agent"
	"riakcsmon/common/daemon"
	"riakcsmon/common/httpserver"
	"riakcsmon/common/reporter"
)

// AgentConfiguration represents the configuration file for the agent
// and check commands.
type AgentConfiguration struct {
	Reporting           reporter.Configuration
	HTTP                httpserver.Configuration
	agent.Configuration `mapstructure:",squash" yaml:",inline"`
}

// Reset resets the configuration for the agent command to its default value.
func (c *AgentConfiguration) Reset() {
	*c = AgentConfiguration{
		Reporting:     reporter.DefaultConfiguration(),
		HTTP:          httpserver.DefaultConfiguration(),
		Configuration: agent.DefaultConfiguration(),
	}
}

type agentOptions struct {
	ConfigRelatedOptions
	CheckMode bool
}

// AgentOptions stores the command-line option values for the agent
// command.
var AgentOptions agentOptions

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start riakcsmon's agent",
	Long: `riakcsmon polls the statistics of Riak CS instances and forwards them
as count and gauge metrics to Prometheus, Kafka or the logs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := AgentConfiguration{}
		config.Reset()
		AgentOptions.Path = args[0]
		if err := AgentOptions.Parse(cmd.OutOrStdout(), "agent", &config); err != nil {
			return err
		}

		r, err := reporter.New(config.Reporting)
		if err != nil {
			return fmt.Errorf("unable to initialize reporter: %w", err)
		}
		return agentStart(r, config, AgentOptions.CheckMode)
	},
}

func init() {
	RootCmd.AddCommand(agentCmd)
	agentCmd.Flags().BoolVarP(&AgentOptions.ConfigRelatedOptions.Dump, "dump", "D", false,
		"Dump configuration before starting")
	agentCmd.Flags().BoolVarP(&AgentOptions.CheckMode, "check", "C", false,
		"Check configuration, but does not start")
}

func agentStart(r *reporter.Reporter, config AgentConfiguration, checkOnly bool) error {
	// Initialize the various components
	daemonComponent, err := daemon.New(r)
	if err != nil {
		return fmt.Errorf("unable to initialize daemon component: %w", err)
	}
	httpComponent, err := httpserver.New(r, config.HTTP, httpserver.Dependencies{
		Daemon: daemonComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize http component: %w", err)
	}
	agentComponent, err := agent.New(r, config.Configuration, agent.Dependencies{
		Daemon: daemonComponent,
		HTTP:   httpComponent,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize agent component: %w", err)
	}

	// Expose some information and metrics
	addCommonHTTPHandlers(r, "agent", httpComponent)
	versionMetrics(r)

	// If we only asked for a check, stop here.
	if checkOnly {
		return nil
	}

	// Start all the components.
	components := []any{
		httpComponent,
		agentComponent,
	}
	return StartStopComponents(r, daemonComponent, components)
}
