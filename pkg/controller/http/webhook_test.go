package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"

	controller "github.com/m-mizutani/gakoci/pkg/controller/http"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces/mocks"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// acceptAll returns a use case mock that accepts every delivery as its header kind
func acceptAll() *mocks.DeliveryUseCaseMock {
	return &mocks.DeliveryUseCaseMock{
		AcceptFunc: func(ctx context.Context, delivery *model.Delivery) (*model.EventInfo, error) {
			return &model.EventInfo{Kind: model.ParseEventKind(delivery.Event), Event: delivery.Event}, nil
		},
	}
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	secret := "test-secret"
	uc := acceptAll()
	handler := controller.NewWebhookHandler(secret, uc)

	tests := []struct {
		name           string
		payload        string
		signature      string
		wantStatusCode int
	}{
		{
			name:           "Valid signature",
			payload:        `{"zen":"Design for failure."}`,
			signature:      "", // Will be generated
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Invalid signature",
			payload:        `{"zen":"Design for failure."}`,
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Missing signature",
			payload:        `{"zen":"Design for failure."}`,
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(tt.payload)
			signature := tt.signature
			if signature == "" && tt.wantStatusCode == http.StatusOK {
				signature = generateSignature(secret, payload)
			}

			req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-GitHub-Event", "ping")
			req.Header.Set("X-GitHub-Delivery", "test-delivery")
			req.Header.Set("X-Hub-Signature-256", signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
		})
	}

	if len(uc.AcceptCalls()) != 1 {
		t.Errorf("Accept called %d times, want 1", len(uc.AcceptCalls()))
	}
}

func TestWebhookHandler_NoSecret(t *testing.T) {
	uc := acceptAll()
	handler := controller.NewWebhookHandler("", uc)

	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-GitHub-Event", "ping")

	w := httptest.NewRecorder()
	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Handle() status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestWebhookHandler_Delivery(t *testing.T) {
	uc := acceptAll()
	handler := controller.NewWebhookHandler("", uc)

	payload := []byte(`{"ref":"refs/heads/master"}`)
	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payload))
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")

	w := httptest.NewRecorder()
	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Handle() status = %v, want %v, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "accepted" {
		t.Errorf("Response status = %v, want accepted", response["status"])
	}
	if response["kind"] != "push" {
		t.Errorf("Response kind = %v, want push", response["kind"])
	}

	calls := uc.AcceptCalls()
	if len(calls) != 1 {
		t.Fatalf("Accept called %d times, want 1", len(calls))
	}
	delivery := calls[0].Delivery
	if delivery.ID != "72d3162e-cc78-11e3-81ab-4c9367dc0958" {
		t.Errorf("Delivery ID = %v", delivery.ID)
	}
	if delivery.Event != "push" {
		t.Errorf("Delivery event = %v, want push", delivery.Event)
	}
	if !bytes.Equal(delivery.Payload, payload) {
		t.Errorf("Delivery payload = %s", delivery.Payload)
	}
	if delivery.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should be set")
	}
}

func TestWebhookHandler_AcceptErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatusCode int
	}{
		{
			name:           "Malformed payload",
			err:            goerr.Wrap(types.ErrMalformedPayload, "missing head_commit"),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "Shutting down",
			err:            types.ErrShuttingDown,
			wantStatusCode: http.StatusServiceUnavailable,
		},
		{
			name:           "Store failure",
			err:            goerr.New("disk full"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mocks.DeliveryUseCaseMock{
				AcceptFunc: func(ctx context.Context, delivery *model.Delivery) (*model.EventInfo, error) {
					return nil, tt.err
				},
			}
			handler := controller.NewWebhookHandler("", uc)

			req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("X-GitHub-Event", "push")

			w := httptest.NewRecorder()
			handler.Handle(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v", w.Code, tt.wantStatusCode)
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response["error"] == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestWebhookHandler_Integration(t *testing.T) {
	ctx := context.Background()
	secret := "integration-test-secret"
	uc := acceptAll()

	server, err := controller.NewServer(
		ctx,
		uc,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(secret),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payloadBytes := []byte(`{"action":"opened","number":1}`)
	signature := generateSignature(secret, payloadBytes)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/hooks/github", bytes.NewReader(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-GitHub-Delivery", "integration-test")
	req.Header.Set("X-Hub-Signature-256", signature)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
	}
}
