package interfaces

import (
	"context"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
)

// StatusReporter posts commit statuses to GitHub
type StatusReporter interface {
	// Report posts status to the given statuses URL
	Report(ctx context.Context, statusesURL string, status *model.CommitStatus) error
}

// TokenSource provides a credential for git and API access
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
