package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// maxPayloadSize is the largest body GitHub sends for a delivery
const maxPayloadSize = 25 << 20

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret     string
	deliveryUC interfaces.DeliveryUseCase
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret disables signature verification.
func NewWebhookHandler(secret string, deliveryUC interfaces.DeliveryUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:     secret,
		deliveryUC: deliveryUC,
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadSize))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature
	if h.secret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !h.verifySignature(body, signature) {
			logger.Warn("Invalid webhook signature")
			writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
			return
		}
	}

	delivery := &model.Delivery{
		ID:         r.Header.Get("X-GitHub-Delivery"),
		Event:      r.Header.Get("X-GitHub-Event"),
		ReceivedAt: time.Now(),
		Payload:    body,
	}

	info, err := h.deliveryUC.Accept(ctx, delivery)
	switch {
	case errors.Is(err, types.ErrMalformedPayload):
		writeError(w, err, http.StatusBadRequest)
		return
	case errors.Is(err, types.ErrShuttingDown):
		writeError(w, err, http.StatusServiceUnavailable)
		return
	case err != nil:
		logger.Error("Failed to accept delivery", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	// Success response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
		"kind":   string(info.Kind),
	}); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
