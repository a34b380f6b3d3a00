/*
Package monitoring provides Prometheus metrics for the site.

# Overview

Metrics are registered on a registry owned by the Metrics value rather than
the global default, so a server and its tests can each build their own.

# Metrics

- HTTP requests (count, latency, response size) by route
- Terminal sessions (active, opened, lifetime, close reason)
- Shell activity (commands by name, navigations, completed boots)
- WebSocket connections and messages
- Error pages served and requests rejected by the rate limiter
- Render timings and uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "error_page")
	// ... render ...
	timer.Stop("success")
*/
package monitoring
