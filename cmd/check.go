// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"riakcsmon/common/reporter"
	"riakcsmon/riakcs"
)

type checkOptions struct {
	ConfigRelatedOptions
}

// CheckOptions stores the command-line option values for the check
// command.
var CheckOptions checkOptions

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle for each instance",
	Long: `Fetch the statistics of each configured Riak CS instance once and print
the resulting metrics, one per line, as "target name kind value". Sinks are not used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := AgentConfiguration{}
		config.Reset()
		CheckOptions.Path = args[0]
		if err := CheckOptions.Parse(cmd.ErrOrStderr(), "agent", &config); err != nil {
			return err
		}

		r, err := reporter.New(config.Reporting)
		if err != nil {
			return fmt.Errorf("unable to initialize reporter: %w", err)
		}
		return checkOnce(cmd.Context(), r, config, cmd.OutOrStdout())
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&CheckOptions.ConfigRelatedOptions.Dump, "dump", "D", false,
		"Dump configuration before checking")
}

// checkOnce runs one cycle per instance, sequentially, and writes the
// submitted metrics to out.
func checkOnce(ctx context.Context, r *reporter.Reporter, config AgentConfiguration, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	printer := func(target string, kind riakcs.Kind) riakcs.SubmitFunc {
		return func(name string, value float64) error {
			_, err := fmt.Fprintf(out, "%s %s %s %s\n",
				target, name, kind, strconv.FormatFloat(value, 'g', -1, 64))
			return err
		}
	}
	failed := 0
	for _, instance := range config.Instances {
		check := riakcs.New(r, instance)
		target := check.Target()
		cycleCtx, cancel := context.WithTimeout(ctx, config.Timeout)
		_, err := check.Run(cycleCtx, printer(target, riakcs.KindCount), printer(target, riakcs.KindGauge))
		cancel()
		if err != nil {
			r.Err(err).Str("instance", target).Msg("check cycle failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(config.Instances))
	}
	return nil
}
