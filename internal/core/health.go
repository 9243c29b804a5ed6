package core

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the database liveness probe so a stalled pool
// cannot hang the health endpoint.
const healthCheckTimeout = 2 * time.Second

// healthResponse is the health endpoint payload.
type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Database    string `json:"database,omitempty"`
}

// HandleHealth reports process liveness and, when a database pool is wired,
// its reachability. A failing database degrades the status to 503 so load
// balancers rotate the instance out.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Service:     s.Config.Service,
		Environment: s.Config.Environment,
	}

	status := http.StatusOK
	if s.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.Health.Ping(ctx); err != nil {
			s.Logger.Error("health check: database unreachable", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	JSON(w, r, status, resp)
}
