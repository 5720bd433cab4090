package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaslegal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saaslegal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClientsRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saaslegal_clients_registered_total",
			Help: "Total number of clients registered through the bot",
		},
	)

	SubscriptionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaslegal_subscriptions_started_total",
			Help: "Total number of subscription intents created",
		},
		[]string{"membership"},
	)

	SubscriptionsApprovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saaslegal_subscriptions_approved_total",
			Help: "Total number of subscriptions approved",
		},
	)

	SubscriptionsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saaslegal_subscriptions_cancelled_total",
			Help: "Total number of subscriptions cancelled",
		},
	)

	VouchersUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saaslegal_vouchers_uploaded_total",
			Help: "Total number of payment vouchers uploaded",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaslegal_notifications_total",
			Help: "Total number of outbound Telegram notification attempts",
		},
		[]string{"status"},
	)

	IngestionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaslegal_ingestion_calls_total",
			Help: "Total number of calls to the document ingestion service",
		},
		[]string{"op", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordClientRegistered() {
	ClientsRegisteredTotal.Inc()
}

func RecordSubscriptionStarted(membership string) {
	SubscriptionsStartedTotal.WithLabelValues(membership).Inc()
}

func RecordSubscriptionApproved() {
	SubscriptionsApprovedTotal.Inc()
}

func RecordSubscriptionCancelled() {
	SubscriptionsCancelledTotal.Inc()
}

func RecordVoucherUploaded() {
	VouchersUploadedTotal.Inc()
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func RecordIngestionCall(op, status string) {
	IngestionCallsTotal.WithLabelValues(op, status).Inc()
}
