package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// Client posts commit statuses and hands out the credential used for git access
type Client struct {
	githubClient *github.Client
	token        func(ctx context.Context) (string, error)
}

// NewClient creates an unauthenticated client on top of httpClient (nil means http.DefaultClient)
func NewClient(httpClient *http.Client) *Client {
	return &Client{
		githubClient: github.NewClient(httpClient),
		token:        func(context.Context) (string, error) { return "", nil },
	}
}

// NewTokenClient creates a client authenticated with a personal or OAuth access token
func NewTokenClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		githubClient: github.NewClient(oauth2.NewClient(ctx, ts)),
		token:        func(context.Context) (string, error) { return token, nil },
	}
}

// NewAppClient creates a new GitHub client with App authentication
func NewAppClient(appID, installationID int64, privateKey []byte) (*Client, error) {
	// Create GitHub App transport
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	return &Client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
		token:        itr.Token,
	}, nil
}

// Token returns the credential for git over HTTPS. An empty token means anonymous access.
func (c *Client) Token(ctx context.Context) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	return token, nil
}

// Report posts status to statusesURL. Any non-2xx answer is types.ErrReportingFailed.
func (c *Client) Report(ctx context.Context, statusesURL string, status *model.CommitStatus) error {
	body := &github.RepoStatus{
		State:       github.Ptr(string(status.State)),
		Description: github.Ptr(status.Description),
		Context:     github.Ptr(status.Context),
	}

	req, err := c.githubClient.NewRequest(http.MethodPost, statusesURL, body)
	if err != nil {
		return goerr.Wrap(types.ErrReportingFailed, "failed to build status request",
			goerr.V("url", statusesURL), goerr.V("cause", err.Error()))
	}

	var created github.RepoStatus
	resp, err := c.githubClient.Do(ctx, req, &created)
	if err != nil {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		return goerr.Wrap(types.ErrReportingFailed, "failed to post commit status",
			goerr.V("url", statusesURL),
			goerr.V("status_code", code),
			goerr.V("cause", err.Error()),
		)
	}

	ctxlog.From(ctx).Debug("Posted commit status",
		"url", statusesURL,
		"state", status.State,
		"context", status.Context,
		"id", created.GetID(),
	)

	return nil
}
