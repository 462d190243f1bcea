package github_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	githubinfra "github.com/m-mizutani/gakoci/pkg/infra/github"
)

type statusRequest struct {
	State       string `json:"state"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

func TestClient_Report_Success(t *testing.T) {
	var got statusRequest
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost {
			t.Errorf("Method = %v, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "state": "success"}`))
	}))
	defer server.Close()

	client := githubinfra.NewTokenClient(context.Background(), "test-token")
	err := client.Report(context.Background(), server.URL+"/repos/octo/repo/statuses/abc123", &model.CommitStatus{
		State:       model.StatusSuccess,
		Description: "README.md  status.txt\n",
		Context:     "gakoci/pull_request-octo-repo-checkout",
	})
	gt.NoError(t, err)

	gt.Value(t, gotPath).Equal("/repos/octo/repo/statuses/abc123")
	gt.Value(t, gotAuth).Equal("Bearer test-token")
	gt.Value(t, got.State).Equal("success")
	gt.Value(t, got.Description).Equal("README.md  status.txt\n")
	gt.Value(t, got.Context).Equal("gakoci/pull_request-octo-repo-checkout")
}

func TestClient_Report_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	defer server.Close()

	client := githubinfra.NewClient(server.Client())
	err := client.Report(context.Background(), server.URL+"/repos/o/r/statuses/abc", &model.CommitStatus{
		State: model.StatusFailure,
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrReportingFailed))
}

func TestClient_Report_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := githubinfra.NewClient(nil).Report(context.Background(), url+"/statuses/abc", &model.CommitStatus{State: model.StatusSuccess})
	gt.True(t, errors.Is(err, types.ErrReportingFailed))
}

func TestClient_Token(t *testing.T) {
	ctx := context.Background()

	token, err := githubinfra.NewTokenClient(ctx, "secret").Token(ctx)
	gt.NoError(t, err)
	gt.Value(t, token).Equal("secret")

	token, err = githubinfra.NewClient(nil).Token(ctx)
	gt.NoError(t, err)
	gt.Value(t, token).Equal("")
}

func TestNewAppClient_InvalidKey(t *testing.T) {
	_, err := githubinfra.NewAppClient(1, 2, []byte("not a pem key"))
	gt.Error(t, err)
}
