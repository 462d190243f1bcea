package interfaces

import (
	"context"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
)

// Checkouter manages the shared working copy of each repository
type Checkouter interface {
	// Lock acquires the per-repository token. The returned func releases it.
	Lock(ctx context.Context, owner, repo string) (func(), error)

	// EnsureDir returns the working directory, creating it if missing
	EnsureDir(owner, repo string) (string, error)

	// EnsureCheckedOut makes the working directory reflect ref (commit SHA or branch)
	EnsureCheckedOut(ctx context.Context, owner, repo, ref string) (string, error)
}

// HookLocator discovers hooks matching an event
type HookLocator interface {
	Find(kind model.EventKind, owner, repo string) ([]*model.HookDescriptor, error)
}

// HookRunner executes a single hook
type HookRunner interface {
	Run(ctx context.Context, hook *model.HookDescriptor, event *model.EventInfo, workDir string) (*model.HookResult, error)
}

// DeliveryStore records every inbound delivery
type DeliveryStore interface {
	Append(entry *model.DeliveryLogEntry) error
	Summary() *model.DeliverySummary
	Close() error
}

// PayloadDecoder normalizes raw webhook bodies
type PayloadDecoder interface {
	Decode(event string, payload []byte) (*model.EventInfo, error)
}
