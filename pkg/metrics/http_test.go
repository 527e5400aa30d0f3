package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("/api/v1/products/{slug}", "GET", 200, 20*time.Millisecond)
	m.ObserveRequest("/api/v1/products/{slug}", "GET", 200, 30*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)
	m.IncWebhook("payment.paid", "processed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "goldstore_http_requests_total", "route", "/api/v1/products/{slug}"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "goldstore_http_requests_total", "route", "unknown"); err != nil {
		t.Fatalf("expected unmatched routes under unknown: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "goldstore_payments_webhook_events_total", "outcome", "processed"); err != nil || got != 1 {
		t.Fatalf("expected one processed webhook, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var h *HTTPMetrics
	h.ObserveRequest("/x", "GET", 200, time.Millisecond)
	h.IncWebhook("payment.paid", "processed")
	var c *CronJobMetrics
	c.IncSuccess("job")
	NewCronJobMetrics(nil).IncFailure("job")
}
