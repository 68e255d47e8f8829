// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package httpserver

import (
	"sync"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/gin-gonic/gin"

	"riakcsmon/common/reporter"
)

// CacheByRequestPath is a middleware to cache the request using path as
// key.
func (c *Component) CacheByRequestPath(expire time.Duration) gin.HandlerFunc {
	opts := []cache.Option{
		cache.WithLogger(cacheLogger{c.r}),
		cache.WithOnHitCache(func(gc *gin.Context) {
			c.metrics.cacheHit.WithLabelValues(gc.Request.URL.Path, gc.Request.Method).Inc()
		}),
		cache.WithOnMissCache(func(gc *gin.Context) {
			c.metrics.cacheMiss.WithLabelValues(gc.Request.URL.Path, gc.Request.Method).Inc()
		}),
		cache.WithPrefixKey("cache-"),
		cache.WithCacheStrategyByRequest(func(gc *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: gc.Request.URL.Path,
			}
		}),
	}
	// The store only exists once the component is started.
	handler := sync.OnceValue(func() gin.HandlerFunc {
		return cache.Cache(c.cacheStore, expire, opts...)
	})
	return func(gc *gin.Context) {
		handler()(gc)
	}
}

type cacheLogger struct {
	r *reporter.Reporter
}

func (cl cacheLogger) Errorf(msg string, args ...any) {
	cl.r.Error().Msgf(msg, args...)
}
