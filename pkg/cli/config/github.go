package config

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	githubinfra "github.com/m-mizutani/gakoci/pkg/infra/github"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	WebhookSecret  string `masq:"secret"`
	GitURL         string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "Access token for the status API and git over HTTPS",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (takes precedence over --github-token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key, PEM text or a path to a PEM file",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret (signature verification disabled when empty)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-git-url",
			Usage:       "Base URL repositories are cloned from",
			Value:       "https://github.com",
			Destination: &c.GitURL,
			Sources:     cli.EnvVars("GAKOCI_GITHUB_GIT_URL"),
		},
	}
}

// NewClient creates the GitHub client for the configured credential
func (c *GitHub) NewClient(ctx context.Context) (*githubinfra.Client, error) {
	logger := ctxlog.From(ctx)

	switch {
	case c.AppID != 0:
		if c.InstallationID == 0 || c.PrivateKey == "" {
			return nil, goerr.New("github-app-installation-id and github-app-private-key are required with github-app-id")
		}
		key, err := c.privateKey()
		if err != nil {
			return nil, err
		}
		client, err := githubinfra.NewAppClient(c.AppID, c.InstallationID, key)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App client", goerr.V("app_id", c.AppID))
		}
		logger.Info("Using GitHub App credentials", "app_id", c.AppID, "installation_id", c.InstallationID)
		return client, nil

	case c.Token != "":
		logger.Info("Using GitHub access token")
		return githubinfra.NewTokenClient(ctx, c.Token), nil

	default:
		logger.Warn("No GitHub credential configured, status reports will be rejected")
		return githubinfra.NewClient(nil), nil
	}
}

func (c *GitHub) privateKey() ([]byte, error) {
	if strings.Contains(c.PrivateKey, "-----BEGIN") {
		return []byte(c.PrivateKey), nil
	}
	data, err := os.ReadFile(c.PrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKey))
	}
	return data, nil
}
