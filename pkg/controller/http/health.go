package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// handleHealth answers 200 while deliveries are accepted and 503 while draining
func handleHealth(deliveryUC interfaces.DeliveryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:   model.HealthHealthy,
			Service:  types.ServiceName,
			Version:  types.Version,
			InFlight: deliveryUC.InFlight(),
		}
		code := http.StatusOK
		if !deliveryUC.Accepting() {
			status.Status = model.HealthDraining
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}
