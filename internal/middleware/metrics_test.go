package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newRegisteredMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return m, reg
}

// findMetric returns the metric family with name, or nil.
func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	m, reg := newRegisteredMetrics(t)
	if err := m.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestMetrics_RateLimitCounters(t *testing.T) {
	m, reg := newRegisteredMetrics(t)

	m.IncRateLimitRequests("/match")
	m.IncRateLimitRequests("/match")
	m.IncRateLimitBlocked("/match")
	m.IncRateLimitRedisErrors()

	requests := findMetric(t, reg, MetricRateLimitRequests)
	if requests == nil {
		t.Fatalf("metric %s not found", MetricRateLimitRequests)
	}
	if got := requests.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("expected 2 rate limit checks, got %v", got)
	}

	blocked := findMetric(t, reg, MetricRateLimitBlocked)
	if blocked == nil || blocked.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Errorf("expected 1 blocked request")
	}

	redisErrors := findMetric(t, reg, MetricRateLimitRedisErrors)
	if redisErrors == nil || redisErrors.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Errorf("expected 1 redis error")
	}
}

func TestHTTPMetrics_RecordsRequests(t *testing.T) {
	m, reg := newRegisteredMetrics(t)

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{}}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/match", nil))

	total := findMetric(t, reg, MetricHTTPRequestsTotal)
	if total == nil {
		t.Fatalf("metric %s not found", MetricHTTPRequestsTotal)
	}
	metric := total.GetMetric()[0]
	if labelValue(metric, "path") != "/match" {
		t.Errorf("expected path /match, got %s", labelValue(metric, "path"))
	}
	if labelValue(metric, "status") != "422" {
		t.Errorf("expected status 422, got %s", labelValue(metric, "status"))
	}
	if labelValue(metric, "method") != "POST" {
		t.Errorf("expected method POST, got %s", labelValue(metric, "method"))
	}

	respSize := findMetric(t, reg, MetricHTTPResponseSizeBytes)
	if respSize == nil || respSize.GetMetric()[0].GetHistogram().GetSampleSum() != 12 {
		t.Errorf("expected response size 12 to be observed")
	}
}

func TestHTTPMetrics_SkipsProbes(t *testing.T) {
	m, reg := newRegisteredMetrics(t)
	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if total := findMetric(t, reg, MetricHTTPRequestsTotal); total != nil && len(total.GetMetric()) > 0 {
		t.Errorf("expected no request metrics for probes, got %d series", len(total.GetMetric()))
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/":            "/",
		"/match":       "/match",
		"/health":      "/health",
		"/match/extra": "other",
		"/wp-admin":    "other",
		"":             "other",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
