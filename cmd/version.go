// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"net/http"
	"runtime"
	runtimedebug "runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"riakcsmon/common/helpers"
	"riakcsmon/common/reporter"
)

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Long:  `Display version and build information about riakcsmon.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Printf("riakcsmon %s\n", helpers.RiakcsmonVersion)
		cmd.Printf("  Built with: %s\n", runtime.Version())
		if info, ok := runtimedebug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if strings.HasPrefix(setting.Key, "GO") {
					cmd.Printf("  Build setting %s=%s\n", setting.Key, setting.Value)
				}
			}
		}
		return nil
	},
}

func versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":  helpers.RiakcsmonVersion,
		"compiler": runtime.Version(),
	})
}

func versionMetrics(r *reporter.Reporter) {
	r.GaugeVec(reporter.GaugeOpts{
		Name: "info",
		Help: "riakcsmon build information",
	}, []string{"version", "compiler"}).
		WithLabelValues(helpers.RiakcsmonVersion, runtime.Version()).Set(1)
}
