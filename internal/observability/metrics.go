package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cdpctl"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	cdpPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cdp",
			Name:      "packets_total",
			Help:      "CDP packets decoded or encoded, by result.",
		},
		[]string{"op", "result"},
	)
	cdpBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cdp",
			Name:      "bytes_total",
			Help:      "CDP bytes consumed by decode or produced by encode.",
		},
		[]string{"op"},
	)
	captionPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cdp",
			Name:      "caption_packets_total",
			Help:      "DTVCC packets and CEA-608 pairs carried in cc_data.",
		},
		[]string{"op", "kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, cdpPackets, cdpBytes, captionPackets)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCDP counts one decode or encode; result is an error kind or "ok".
func RecordCDP(op, result string, size int) {
	RegisterMetrics()
	cdpPackets.WithLabelValues(op, result).Inc()
	if size > 0 {
		cdpBytes.WithLabelValues(op).Add(float64(size))
	}
}

// RecordCaptions counts DTVCC packets and CEA-608 pairs.
func RecordCaptions(op string, dtvcc, cea608 int) {
	RegisterMetrics()
	captionPackets.WithLabelValues(op, "dtvcc").Add(float64(dtvcc))
	captionPackets.WithLabelValues(op, "cea608").Add(float64(cea608))
}
