/*
Package monitoring provides Prometheus metrics for the package daemon.

# Overview

Collectors are registered against an explicit prometheus.Registerer so
that each daemon instance (and each test) owns its registry.

# Features

- HTTP request metrics (latency, status, size) labelled by route
- Registry metrics (installed packages, installs, removals, restores)
- Descriptor cache load and save results
- Lazy signature load results
- View generation counts and latency per view kind

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))

	timer := monitoring.NewTimer(metrics, "activity")
	// ... generate view ...
	timer.Stop("ok")
*/
package monitoring
