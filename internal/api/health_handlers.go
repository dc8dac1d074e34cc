package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check states reported in HealthResponse.Checks.
const (
	CheckOK            = "ok"
	CheckError         = "error"
	CheckNotConfigured = "not_configured"
)

// DefaultReadyTimeout bounds all readiness checks together.
const DefaultReadyTimeout = 5 * time.Second

// HealthHandlers provides health and readiness check endpoints for Kubernetes probes.
type HealthHandlers struct {
	checkers     map[string]HealthChecker
	optional     []string
	readyTimeout time.Duration
	now          func() time.Time
}

// HealthHandlersConfig configures the health check handlers.
type HealthHandlersConfig struct {
	// RedisChecker pings the shared rate limit store (optional).
	RedisChecker HealthChecker
	// ReadyTimeout bounds readiness checks; zero selects DefaultReadyTimeout.
	ReadyTimeout time.Duration
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	h := &HealthHandlers{
		checkers:     make(map[string]HealthChecker),
		readyTimeout: config.ReadyTimeout,
		now:          time.Now,
	}
	if h.readyTimeout <= 0 {
		h.readyTimeout = DefaultReadyTimeout
	}
	if config.RedisChecker != nil {
		h.checkers["redis"] = config.RedisChecker
	} else {
		h.optional = append(h.optional, "redis")
	}
	return h
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
// If the process can answer, it is alive; dependencies are not consulted.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeHealth(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Checks: map[string]string{"runtime": CheckOK},
	})
}

// Ready handles GET /ready (readiness probe).
// Returns 503 if any configured dependency fails its check. Ranking itself
// has no dependencies, so an instance without Redis is always ready.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
	defer cancel()

	checks := map[string]string{"ranking": CheckOK}
	healthy := true

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checkers[name].HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			healthy = false
			slog.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			continue
		}
		checks[name] = CheckOK
	}
	for _, name := range h.optional {
		checks[name] = CheckNotConfigured
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeHealth(w, statusCode, HealthResponse{Status: status, Checks: checks})
}

func (h *HealthHandlers) writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	response.Timestamp = h.now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
