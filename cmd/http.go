// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"github.com/gin-gonic/gin"

	"riakcsmon/common/httpserver"
	"riakcsmon/common/reporter"
)

// addCommonHTTPHandlers configures various endpoints common to all
// services. Each endpoint is registered under `/api/v0` and
// `/api/v0/SERVICE` namespaces.
func addCommonHTTPHandlers(r *reporter.Reporter, service string, httpComponent *httpserver.Component) {
	metricsHandler := gin.WrapH(r.MetricsHTTPHandler())
	for _, prefix := range []string{"/api/v0", "/api/v0/" + service} {
		httpComponent.GinRouter.GET(prefix+"/metrics", metricsHandler)
		httpComponent.GinRouter.GET(prefix+"/healthcheck", r.HealthcheckHTTPHandler)
		httpComponent.GinRouter.GET(prefix+"/version", versionHandler)
	}
}
