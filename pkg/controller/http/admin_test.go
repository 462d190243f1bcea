package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	controller "github.com/m-mizutani/gakoci/pkg/controller/http"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces/mocks"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
)

func newAdminServer(t *testing.T, uc *mocks.DeliveryUseCaseMock, opts ...controller.Option) http.Handler {
	t.Helper()
	server, err := controller.NewServer(context.Background(), uc, opts...)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server.Handler
}

func TestDeliveriesEndpoint(t *testing.T) {
	last := &model.DeliveryLogEntry{
		ID:         "d-2",
		Event:      "push",
		Kind:       model.EventKindPush,
		ReceivedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Payload:    []byte(`{"secret":"not exposed"}`),
	}
	uc := &mocks.DeliveryUseCaseMock{
		SummaryFunc: func() *model.DeliverySummary {
			return &model.DeliverySummary{
				Counts: map[string]int{"push": 1, "ping": 1},
				Last:   last,
			}
		},
	}
	handler := newAdminServer(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/deliveries", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	counts, ok := body["counts"].(map[string]any)
	if !ok {
		t.Fatalf("counts missing: %v", body)
	}
	if counts["push"] != float64(1) || counts["ping"] != float64(1) {
		t.Errorf("counts = %v", counts)
	}

	lastBody, ok := body["last"].(map[string]any)
	if !ok {
		t.Fatalf("last missing: %v", body)
	}
	if lastBody["id"] != "d-2" {
		t.Errorf("last id = %v, want d-2", lastBody["id"])
	}
	if _, exists := lastBody["payload"]; exists {
		t.Error("payload should not be exposed")
	}
}

func TestShutdownEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		authorization  string
		wantStatusCode int
		wantRequested  bool
	}{
		{
			name:           "Valid token",
			token:          "admin-token",
			authorization:  "Bearer admin-token",
			wantStatusCode: http.StatusAccepted,
			wantRequested:  true,
		},
		{
			name:           "Wrong token",
			token:          "admin-token",
			authorization:  "Bearer nope",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Missing header",
			token:          "admin-token",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Not a bearer token",
			token:          "admin-token",
			authorization:  "admin-token",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Disabled without token",
			authorization:  "Bearer ",
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mocks.DeliveryUseCaseMock{
				RequestShutdownFunc: func() {},
			}
			var opts []controller.Option
			if tt.token != "" {
				opts = append(opts, controller.WithAdminToken(tt.token))
			}
			handler := newAdminServer(t, uc, opts...)

			req := httptest.NewRequest(http.MethodPost, "/admin/shutdown", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Status code = %v, want %v", w.Code, tt.wantStatusCode)
			}
			if got := len(uc.RequestShutdownCalls()) == 1; got != tt.wantRequested {
				t.Errorf("RequestShutdown called = %v, want %v", got, tt.wantRequested)
			}
		})
	}
}
