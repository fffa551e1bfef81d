package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for TradeBook.
type Metrics struct {
	// --- Booking pipeline ---
	TradesBooked      *prometheus.CounterVec
	BookingsRejected  *prometheus.CounterVec
	BookingDuplicates prometheus.Counter
	BookingDuration   *prometheus.HistogramVec
	StoredTrades      prometheus.Gauge

	// --- Notification ---
	EventsPublished prometheus.Counter
	PublishFailures *prometheus.CounterVec

	// --- Blotter ---
	BlotterRowsWritten prometheus.Counter
	BlotterDropped     prometheus.Counter
	BlotterErrors      *prometheus.CounterVec
	BlotterFlushDur    prometheus.Histogram

	// --- API ---
	APIRequests *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec
	APIErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.00001, 0.000025, 0.00005, 0.0001, 0.00025,
		0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05,
	}

	return &Metrics{
		TradesBooked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_trades_booked_total",
			Help: "Trades successfully booked",
		}, []string{"asset_class"}),

		BookingsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_bookings_rejected_total",
			Help: "Bookings rejected by validation",
		}, []string{"stage"}),

		BookingDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradebook_booking_duplicates_total",
			Help: "Submissions short-circuited by idempotency key",
		}),

		BookingDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradebook_booking_duration_seconds",
			Help:    "Time to book a single trade",
			Buckets: latencyBuckets,
		}, []string{"asset_class"}),

		StoredTrades: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tradebook_stored_trades",
			Help: "Records currently held by the trade store",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradebook_events_published_total",
			Help: "TradeBooked events delivered to observers",
		}),

		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_publish_failures_total",
			Help: "Observer publish failures",
		}, []string{"sink"}),

		BlotterRowsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradebook_blotter_rows_written_total",
			Help: "Rows written to the Postgres blotter",
		}),

		BlotterDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradebook_blotter_dropped_total",
			Help: "Events dropped because the blotter buffer was full",
		}),

		BlotterErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_blotter_errors_total",
			Help: "Blotter write errors",
		}, []string{"stage"}),

		BlotterFlushDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradebook_blotter_flush_duration_seconds",
			Help:    "Time to flush one blotter batch",
			Buckets: prometheus.DefBuckets,
		}),

		APIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_api_requests_total",
			Help: "API requests by operation",
		}, []string{"op"}),

		APIDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradebook_api_request_duration_seconds",
			Help:    "API request handling time",
			Buckets: latencyBuckets,
		}, []string{"op"}),

		APIErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebook_api_errors_total",
			Help: "API errors by operation and reason",
		}, []string{"op", "reason"}),
	}
}
