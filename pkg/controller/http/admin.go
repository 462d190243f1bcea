package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
)

// AdminHandler serves the delivery log and the shutdown trigger
type AdminHandler struct {
	token      string
	deliveryUC interfaces.DeliveryUseCase
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(token string, deliveryUC interfaces.DeliveryUseCase) *AdminHandler {
	return &AdminHandler{
		token:      token,
		deliveryUC: deliveryUC,
	}
}

// HandleDeliveries returns per-event counts and the last delivery
func (h *AdminHandler) HandleDeliveries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.deliveryUC.Summary()); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode deliveries response", "error", err)
	}
}

// HandleShutdown asks the process to stop after draining in-flight deliveries
func (h *AdminHandler) HandleShutdown(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.From(r.Context())

	if !h.authorized(r) {
		logger.Warn("Rejected shutdown request")
		writeError(w, goerr.New("unauthorized"), http.StatusUnauthorized)
		return
	}

	logger.Info("Shutdown requested via admin endpoint")
	h.deliveryUC.RequestShutdown()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "shutting down",
	}); err != nil {
		logger.Error("Failed to encode shutdown response", "error", err)
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
