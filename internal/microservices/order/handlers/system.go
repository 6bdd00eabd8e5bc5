package handlers

import (
	"net/http"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

type SystemHandler struct {
	gw  Gateway
	log *logger.Logger
	now func() time.Time
}

func NewSystemHandler(gw Gateway, lg *logger.Logger) *SystemHandler {
	return &SystemHandler{gw: gw, log: lg, now: time.Now}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"message":   "orderboard api is running",
	})
}

// InitDB creates the schema and seeds the demo dishes into an empty catalog.
func (h *SystemHandler) InitDB(w http.ResponseWriter, r *http.Request) {
	p, ok := h.gw.(Provisioner)
	if !ok {
		writeError(w, h.log, "db_init_failed", domain.ErrConfiguration)
		return
	}
	if err := p.EnsureSchema(r.Context()); err != nil {
		writeError(w, h.log, "db_init_failed", err)
		return
	}
	seeded, err := p.SeedDemoDishes(r.Context())
	if err != nil {
		writeError(w, h.log, "db_init_failed", err)
		return
	}
	h.log.Info("db_initialized", map[string]any{"seeded": seeded})
	writeJSON(w, http.StatusOK, map[string]any{"status": "initialized", "seeded": seeded})
}
