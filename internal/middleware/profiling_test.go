package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProfiling(t *testing.T) {
	tests := []struct {
		name       string
		cfg        ProfilingConfig
		wantPprof  bool
	}{
		{"disabled", ProfilingConfig{Enabled: false, Environment: "development"}, false},
		{"enabled in development", ProfilingConfig{Enabled: true, Environment: "development"}, true},
		{"refused in production", ProfilingConfig{Enabled: true, Environment: "production"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Profiling(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
			servedPprof := rr.Code == http.StatusOK
			if servedPprof != tt.wantPprof {
				t.Errorf("pprof served = %t, want %t (status %d)", servedPprof, tt.wantPprof, rr.Code)
			}

			other := httptest.NewRecorder()
			handler.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/match", nil))
			if other.Code != http.StatusTeapot {
				t.Errorf("non-pprof request should reach next handler, got %d", other.Code)
			}
		})
	}
}
