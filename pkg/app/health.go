package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves /health for liveness and /ready, which checks every
// dependency in parallel and answers 503 if any of them fails.
type HealthHandler struct {
	checks []readinessCheck
	log    *logger.Logger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	h := &HealthHandler{log: log}
	h.AddCheck("database", func(ctx context.Context) error {
		return db.Ping(ctx, readpref.Primary())
	})
	return h
}

func (h *HealthHandler) AddCheck(name string, check func(ctx context.Context) error) {
	h.checks = append(h.checks, readinessCheck{name: name, check: check})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]error, len(h.checks))
	var g errgroup.Group
	for i, p := range h.checks {
		i, p := i, p
		g.Go(func() error {
			results[i] = p.check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for i, p := range h.checks {
		if err := results[i]; err != nil {
			h.log.Error("Readiness check failed", "check", p.name, "error", err)
			resp.Checks[p.name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[p.name] = "ok"
	}
	h.write(w, status, resp)
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, resp HealthResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "health", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
