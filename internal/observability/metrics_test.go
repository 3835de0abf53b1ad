package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsGateDecisions(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveGateDecision("delete_post", "forbidden")
	metrics.ObserveGateDecision("delete_post", "forbidden")
	metrics.ObserveGateDecision("", "allowed")

	body := scrape(t, metrics)
	if !strings.Contains(body, `odyssey_auth_gate_decisions_total{outcome="forbidden",permission="delete_post"} 2`) {
		t.Fatalf("expected forbidden decisions, got: %s", body)
	}
	if !strings.Contains(body, `odyssey_auth_gate_decisions_total{outcome="allowed",permission="any"} 1`) {
		t.Fatalf("expected empty permission to be labelled any, got: %s", body)
	}
}

func TestMetricsWelcomeEnqueue(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveWelcomeEnqueue(nil)
	metrics.ObserveWelcomeEnqueue(errors.New("redis down"))

	body := scrape(t, metrics)
	for _, want := range []string{
		`odyssey_auth_welcome_enqueue_total{result="ok"} 1`,
		`odyssey_auth_welcome_enqueue_total{result="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveGateDecision("list_product", "allowed")
	metrics.ObserveWelcomeEnqueue(nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
