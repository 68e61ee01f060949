package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	writeHealth(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// readinessCheck checks every configured dependency and reports 503 if any
// of them fails.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
	defer cancel()

	resp := healthResponse{Status: "ready", Checks: make(map[string]string, len(rt.checks))}
	status := http.StatusOK
	for _, c := range rt.checks {
		if err := c.Check(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.String("check", c.Name), zap.Error(err))
			resp.Checks[c.Name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = "ok"
	}
	writeHealth(w, status, resp)
}

func writeHealth(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
