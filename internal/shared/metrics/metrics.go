package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	ingestStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "resume_ingest",
		Name:      "uploads_started_total",
		Help:      "Total resume upload attempts started.",
	})

	ingestCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "resume_ingest",
		Name:      "uploads_completed_total",
		Help:      "Total resume uploads committed.",
	})

	ingestFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume_ingest",
		Name:      "uploads_failed_total",
		Help:      "Total resume uploads failed, by failure kind.",
	}, []string{"kind"})

	ingestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "resume_ingest",
		Name:      "upload_duration_seconds",
		Help:      "End-to-end upload pipeline duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	orphanedBlobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "resume_ingest",
		Name:      "orphaned_blobs_total",
		Help:      "Blob deletes that failed best-effort and were left behind.",
	})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resume_ingest",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume_ingest",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ingestStartedTotal,
			ingestCompletedTotal,
			ingestFailedTotal,
			ingestDuration,
			orphanedBlobsTotal,
			requestDuration,
			requestTotal,
		)
	})
}

// IncIngestStarted increments the started counter.
func IncIngestStarted() {
	register()
	ingestStartedTotal.Inc()
}

// IncIngestCompleted increments the completed counter.
func IncIngestCompleted() {
	register()
	ingestCompletedTotal.Inc()
}

// IncIngestFailed increments the failed counter for the given failure kind.
func IncIngestFailed(kind string) {
	register()
	ingestFailedTotal.WithLabelValues(kind).Inc()
}

// ObserveIngestDuration records an upload pipeline duration.
func ObserveIngestDuration(d time.Duration) {
	register()
	ingestDuration.Observe(d.Seconds())
}

// IncOrphanedBlob records a best-effort blob delete that failed.
func IncOrphanedBlob() {
	register()
	orphanedBlobsTotal.Inc()
}

// GinMiddleware records per-request metrics.
func GinMiddleware() gin.HandlerFunc {
	register()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())
		requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	register()
	return gin.WrapH(promhttp.Handler())
}
