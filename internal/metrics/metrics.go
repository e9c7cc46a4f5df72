// Package metrics exports pidforge events as Prometheus metrics.
//
// A Collector implements every hook interface in pkg/observability. Register
// it once at startup, then mount Handler on the HTTP server:
//
//	c := metrics.New("pidforge")
//	c.Register()
//	r.Handle("/metrics", c.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pidforge/pkg/observability"
)

// Collector holds the Prometheus metrics for one process. Each Collector
// owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	gestures *prometheus.CounterVec
	affected *prometheus.CounterVec
	exports  *prometheus.CounterVec
	exportSz prometheus.Histogram
	exportD  prometheus.Histogram

	storeOps *prometheus.CounterVec
	storeD   *prometheus.HistogramVec

	cacheOps *prometheus.CounterVec

	clientReqs *prometheus.CounterVec
	clientD    *prometheus.HistogramVec

	httpReqs *prometheus.CounterVec
	httpD    *prometheus.HistogramVec
}

// New creates a collector whose metrics are prefixed with namespace.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Editing gestures by kind and outcome.",
		}, []string{"gesture", "outcome"}),
		affected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gesture_affected_total",
			Help:      "Instances moved or wires created by committed gestures.",
		}, []string{"gesture"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Raster exports by outcome.",
		}, []string{"outcome"}),
		exportSz: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Size of encoded PNG exports.",
			Buckets:   prometheus.ExponentialBuckets(4<<10, 4, 6),
		}),
		exportD: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent rasterizing and encoding exports.",
			Buckets:   prometheus.DefBuckets,
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Schematic store operations.",
		}, []string{"backend", "operation", "outcome"}),
		storeD: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Schematic store latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "result"}),
		clientReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Outgoing HTTP requests by host and status.",
		}, []string{"method", "host", "status"}),
		clientD: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "Outgoing HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpD: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Served HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.gestures, c.affected, c.exports, c.exportSz, c.exportD,
		c.storeOps, c.storeD,
		c.cacheOps,
		c.clientReqs, c.clientD,
		c.httpReqs, c.httpD,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Register installs c as the process-wide observability hooks.
func (c *Collector) Register() {
	observability.SetEditorHooks(c)
	observability.SetStoreHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware counts and times served requests. Routes are labelled with
// their chi pattern so ids do not explode the label space.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpReqs.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpD.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnGestureStart implements observability.EditorHooks.
func (c *Collector) OnGestureStart(gesture string) {
	c.gestures.WithLabelValues(gesture, "started").Inc()
}

// OnGestureEnd implements observability.EditorHooks.
func (c *Collector) OnGestureEnd(gesture string, committed bool, affected int) {
	if !committed {
		c.gestures.WithLabelValues(gesture, "discarded").Inc()
		return
	}
	c.gestures.WithLabelValues(gesture, "committed").Inc()
	c.affected.WithLabelValues(gesture).Add(float64(affected))
}

// OnExport implements observability.EditorHooks.
func (c *Collector) OnExport(bytes int, duration time.Duration, err error) {
	c.exports.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	c.exportSz.Observe(float64(bytes))
	c.exportD.Observe(duration.Seconds())
}

// OnSave implements observability.StoreHooks.
func (c *Collector) OnSave(_ context.Context, backend, _ string, duration time.Duration, err error) {
	c.storeOps.WithLabelValues(backend, "save", outcome(err)).Inc()
	c.storeD.WithLabelValues(backend, "save").Observe(duration.Seconds())
}

// OnLoad implements observability.StoreHooks.
func (c *Collector) OnLoad(_ context.Context, backend, _ string, duration time.Duration, err error) {
	c.storeOps.WithLabelValues(backend, "load", outcome(err)).Inc()
	c.storeD.WithLabelValues(backend, "load").Observe(duration.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (c *Collector) OnCacheSet(_ context.Context, keyType string, _ int) {
	c.cacheOps.WithLabelValues(keyType, "set").Inc()
}

// OnRequest implements observability.HTTPHooks. Requests are counted when
// they complete.
func (c *Collector) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (c *Collector) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	c.clientReqs.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	c.clientD.WithLabelValues(method, host).Observe(duration.Seconds())
}

// OnError implements observability.HTTPHooks.
func (c *Collector) OnError(_ context.Context, method, host, _ string, _ error) {
	c.clientReqs.WithLabelValues(method, host, "error").Inc()
}

var (
	_ observability.EditorHooks = (*Collector)(nil)
	_ observability.StoreHooks  = (*Collector)(nil)
	_ observability.CacheHooks  = (*Collector)(nil)
	_ observability.HTTPHooks   = (*Collector)(nil)
)
