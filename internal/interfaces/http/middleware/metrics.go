package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsConfig configures HTTPMetrics.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests per route. Without an enabled provider it only calls c.Next.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter is HTTPMetrics on a caller-supplied meter.
// Instrument registration failures degrade to a pass-through.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	rec, err := newRouteRecorder(meter)
	if err != nil {
		return passThrough
	}
	return rec.observe
}

func passThrough(c *gin.Context) { c.Next() }

type routeRecorder struct {
	requests *telemetry.Counter
	inFlight metric.Int64UpDownCounter
	latency  *telemetry.Histogram
	reqBytes *telemetry.Histogram
	resBytes *telemetry.Histogram
}

// add-item and update-item carry inline base64 images, so request sizes
// are bucketed up to the body limit.
var (
	requestSizeBuckets  = []float64{1e2, 1e3, 1e4, 1e5, 1e6, 5e6, 1e7, 2.5e7}
	responseSizeBuckets = []float64{1e2, 5e2, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6}
)

func newRouteRecorder(meter metric.Meter) (*routeRecorder, error) {
	var (
		rec routeRecorder
		err error
	)
	if rec.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if rec.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}

	histograms := []struct {
		dst  **telemetry.Histogram
		opts telemetry.HistogramOpts
	}{
		{&rec.latency, telemetry.HistogramOpts{Name: "http_server_request_duration_seconds",
			Description: "HTTP request latency", Unit: "s", Boundaries: telemetry.HTTPDurationBuckets}},
		{&rec.reqBytes, telemetry.HistogramOpts{Name: "http_server_request_size_bytes",
			Description: "HTTP request body size", Unit: "By", Boundaries: requestSizeBuckets}},
		{&rec.resBytes, telemetry.HistogramOpts{Name: "http_server_response_size_bytes",
			Description: "HTTP response body size", Unit: "By", Boundaries: responseSizeBuckets}},
	}
	for _, h := range histograms {
		if *h.dst, err = telemetry.NewHistogram(meter, h.opts); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (r *routeRecorder) observe(c *gin.Context) {
	ctx := c.Request.Context()
	began := time.Now()

	r.inFlight.Add(ctx, 1)
	c.Next()
	r.inFlight.Add(ctx, -1)

	// unmatched paths share one series instead of one per raw URL
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}

	r.latency.RecordDuration(ctx, time.Since(began), attrs...)
	if n := c.Request.ContentLength; n > 0 {
		r.reqBytes.Record(ctx, float64(n), attrs...)
	}
	if n := c.Writer.Size(); n > 0 {
		r.resBytes.Record(ctx, float64(n), attrs...)
	}
	r.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
}
