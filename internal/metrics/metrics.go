// Package metrics exposes Prometheus instrumentation for the storage layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so multiple instances (one per test, one
// per process) never fight over metric registration.
type Collector struct {
	reg *prometheus.Registry

	FallbackReads     prometheus.Counter
	CloudSyncs        prometheus.Counter
	CloudSyncFailures prometheus.Counter
	LocalWriteErrs    prometheus.Counter
	LegacyMigrations  prometheus.Counter

	WeatherCacheHits   prometheus.Counter
	WeatherCacheMisses prometheus.Counter
	WeatherFetches     prometheus.Counter
	WeatherFetchErrs   prometheus.Counter
}

// NewCollector creates and registers all storage-layer metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FallbackReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_fallback_reads_total",
			Help: "Modification reads served from the local store after a cloud failure.",
		}),
		CloudSyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_cloud_syncs_total",
			Help: "Asynchronous cloud writes attempted after a local save.",
		}),
		CloudSyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_cloud_sync_failures_total",
			Help: "Asynchronous cloud writes that failed and were logged.",
		}),
		LocalWriteErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_local_write_errors_total",
			Help: "Local store writes that failed and were swallowed.",
		}),
		LegacyMigrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_legacy_migrations_total",
			Help: "Legacy stop-status records upgraded to the current shape.",
		}),
		WeatherCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_weather_cache_hits_total",
			Help: "Weather lookups served from a valid cache entry.",
		}),
		WeatherCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_weather_cache_misses_total",
			Help: "Weather lookups that found no valid cache entry.",
		}),
		WeatherFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_weather_fetches_total",
			Help: "Calls made to the external weather API.",
		}),
		WeatherFetchErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_weather_fetch_errors_total",
			Help: "External weather API calls that failed.",
		}),
	}

	reg.MustRegister(
		c.FallbackReads,
		c.CloudSyncs,
		c.CloudSyncFailures,
		c.LocalWriteErrs,
		c.LegacyMigrations,
		c.WeatherCacheHits,
		c.WeatherCacheMisses,
		c.WeatherFetches,
		c.WeatherFetchErrs,
	)
	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
