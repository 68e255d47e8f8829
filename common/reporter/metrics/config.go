// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package metrics

// Configuration is the configuration for the metrics subsystem.
type Configuration struct {
	// DisableRuntimeMetrics removes the go_* and process_* metrics.
	DisableRuntimeMetrics bool
}

// DefaultConfiguration is the default metrics configuration.
func DefaultConfiguration() Configuration {
	return Configuration{}
}
