package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/bot/memberships", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/bot/memberships", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/bot/subscribe", "200", 0.1)
	RecordHTTPRequest("POST", "/bot/subscribe", "200", 0.2)
	RecordHTTPRequest("POST", "/bot/subscribe", "404", 0.05)

	okCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bot/subscribe", "200"))
	notFoundCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bot/subscribe", "404"))

	assert.Equal(t, float64(2), okCount)
	assert.Equal(t, float64(1), notFoundCount)
}

func TestRecordSubscriptionStarted(t *testing.T) {
	SubscriptionsStartedTotal.Reset()

	RecordSubscriptionStarted("Plan Profesional")
	RecordSubscriptionStarted("Plan Profesional")

	count := testutil.ToFloat64(SubscriptionsStartedTotal.WithLabelValues("Plan Profesional"))
	assert.Equal(t, float64(2), count)
}

func TestRecordNotification(t *testing.T) {
	NotificationsTotal.Reset()

	RecordNotification("sent")
	RecordNotification("failed")
	RecordNotification("failed")

	sent := testutil.ToFloat64(NotificationsTotal.WithLabelValues("sent"))
	failed := testutil.ToFloat64(NotificationsTotal.WithLabelValues("failed"))

	assert.Equal(t, float64(1), sent)
	assert.Equal(t, float64(2), failed)
}

func TestRecordIngestionCall(t *testing.T) {
	IngestionCallsTotal.Reset()

	RecordIngestionCall("ingest", "ok")
	RecordIngestionCall("delete", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(IngestionCallsTotal.WithLabelValues("ingest", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(IngestionCallsTotal.WithLabelValues("delete", "failed")))
}
