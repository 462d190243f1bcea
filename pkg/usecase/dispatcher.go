package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	"github.com/m-mizutani/gakoci/pkg/utils/async"
	"github.com/m-mizutani/gakoci/pkg/utils/errutil"
)

const (
	reportTimeout = 30 * time.Second

	// forcedStopWait bounds the wait for handlers after their contexts were cancelled
	forcedStopWait = 10 * time.Second
)

var _ interfaces.DeliveryUseCase = (*Dispatcher)(nil)

// Dependencies are the collaborators driven by the Dispatcher
type Dependencies struct {
	Decoder  interfaces.PayloadDecoder
	Locator  interfaces.HookLocator
	Checkout interfaces.Checkouter
	Runner   interfaces.HookRunner
	Reporter interfaces.StatusReporter
	Store    interfaces.DeliveryStore
}

// Option is a functional option for Dispatcher configuration
type Option func(*Dispatcher)

// WithStatusContextPrefix sets the prefix of each hook's status context
func WithStatusContextPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		d.contextPrefix = prefix
	}
}

// WithClock replaces time.Now for received timestamps
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// Dispatcher maps deliveries to hooks, runs them and reports one status per hook
type Dispatcher struct {
	deps          Dependencies
	group         *async.Group
	contextPrefix string
	now           func() time.Time

	mu      sync.RWMutex
	closing bool

	shutdownReq  chan struct{}
	requestOnce  sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
}

// NewDispatcher creates a Dispatcher. Every dependency is required.
func NewDispatcher(deps Dependencies, opts ...Option) (*Dispatcher, error) {
	switch {
	case deps.Decoder == nil:
		return nil, goerr.New("decoder is required")
	case deps.Locator == nil:
		return nil, goerr.New("hook locator is required")
	case deps.Checkout == nil:
		return nil, goerr.New("checkout coordinator is required")
	case deps.Runner == nil:
		return nil, goerr.New("hook runner is required")
	case deps.Reporter == nil:
		return nil, goerr.New("status reporter is required")
	case deps.Store == nil:
		return nil, goerr.New("delivery store is required")
	}

	d := &Dispatcher{
		deps:          deps,
		group:         async.NewGroup(),
		contextPrefix: types.ServiceName,
		now:           time.Now,
		shutdownReq:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Accept records the delivery, decodes it and schedules its hooks. It returns once the work
// is scheduled; a decode failure is returned and no hook runs.
func (d *Dispatcher) Accept(ctx context.Context, delivery *model.Delivery) (*model.EventInfo, error) {
	// Held until the work is handed to the group so Shutdown cannot miss it
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closing {
		return nil, types.ErrShuttingDown
	}

	entry := &model.DeliveryLogEntry{
		ID:         delivery.ID,
		Event:      delivery.Event,
		Kind:       model.ParseEventKind(delivery.Event),
		ReceivedAt: delivery.ReceivedAt,
		Payload:    delivery.Payload,
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = d.now()
	}

	logger := ctxlog.From(ctx).With("delivery_id", entry.ID, "event", entry.Event)
	ctx = ctxlog.With(ctx, logger)

	if err := d.deps.Store.Append(entry); err != nil {
		return nil, goerr.Wrap(err, "failed to record delivery")
	}

	info, err := d.deps.Decoder.Decode(delivery.Event, delivery.Payload)
	if err != nil {
		logger.Warn("Rejected malformed delivery", "error", err)
		return nil, err
	}

	if !info.Actionable() {
		logger.Info("Delivery recorded without dispatch", "kind", info.Kind)
		return info, nil
	}

	d.group.Dispatch(ctx, func(ctx context.Context) error {
		d.Process(ctx, info)
		return nil
	})

	return info, nil
}

// Process runs every hook matching info in order and reports one status per hook.
// The repository lock is held for the whole execution phase.
func (d *Dispatcher) Process(ctx context.Context, info *model.EventInfo) []*model.HookOutcome {
	if !info.Actionable() {
		return nil
	}

	logger := ctxlog.From(ctx).With(
		"kind", info.Kind,
		"owner", info.Owner,
		"repo", info.Repo,
		"commit", info.Commit,
	)
	ctx = ctxlog.With(ctx, logger)

	hooks, err := d.deps.Locator.Find(info.Kind, info.Owner, info.Repo)
	if err != nil {
		errutil.Handle(ctx, "failed to find hooks", err)
		return nil
	}
	if len(hooks) == 0 {
		logger.Info("No hooks matched")
		return nil
	}

	logger.Info("Dispatching hooks", "count", len(hooks))

	unlock, err := d.deps.Checkout.Lock(ctx, info.Owner, info.Repo)
	if err != nil {
		errutil.Handle(ctx, "failed to lock repository", err)
		return d.abandon(ctx, hooks, info, err)
	}
	defer unlock()

	outcomes := make([]*model.HookOutcome, 0, len(hooks))
	for _, hook := range hooks {
		outcomes = append(outcomes, d.runHook(ctx, hook, info))
	}
	return outcomes
}

func (d *Dispatcher) runHook(ctx context.Context, hook *model.HookDescriptor, info *model.EventInfo) *model.HookOutcome {
	logger := ctxlog.From(ctx).With("hook", hook.Name)
	ctx = ctxlog.With(ctx, logger)

	outcome := &model.HookOutcome{Hook: hook}
	statusContext := model.StatusContext(d.contextPrefix, hook)

	var workDir string
	var err error
	if hook.RequiresCheckout {
		workDir, err = d.deps.Checkout.EnsureCheckedOut(ctx, info.Owner, info.Repo, info.Commit)
	} else {
		workDir, err = d.deps.Checkout.EnsureDir(info.Owner, info.Repo)
	}

	switch {
	case err != nil && errors.Is(err, types.ErrCheckoutFailed):
		outcome.Err = err
		outcome.Status = model.NewFailureStatus(statusContext, model.DescriptionCheckoutFailed)
	case err != nil:
		outcome.Err = err
		outcome.Status = model.NewFailureStatus(statusContext, model.DescriptionWorkDir)
	default:
		result, runErr := d.deps.Runner.Run(ctx, hook, info, workDir)
		if runErr != nil {
			outcome.Err = runErr
			outcome.Status = model.NewFailureStatus(statusContext, model.DescriptionExecutionFault)
		} else {
			outcome.Result = result
			outcome.Status = model.NewCommitStatus(statusContext, result)
		}
	}

	if outcome.Err != nil {
		errutil.Handle(ctx, "hook did not run", outcome.Err)
	}

	d.report(ctx, info, outcome)
	return outcome
}

// abandon reports a failure for every hook of a delivery that never got the repository lock
func (d *Dispatcher) abandon(ctx context.Context, hooks []*model.HookDescriptor, info *model.EventInfo, cause error) []*model.HookOutcome {
	outcomes := make([]*model.HookOutcome, 0, len(hooks))
	for _, hook := range hooks {
		outcome := &model.HookOutcome{
			Hook:   hook,
			Err:    cause,
			Status: model.NewFailureStatus(model.StatusContext(d.contextPrefix, hook), model.DescriptionCancelled),
		}
		d.report(ctxlog.With(ctx, ctxlog.From(ctx).With("hook", hook.Name)), info, outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// report posts outcome.Status on a detached context with its own timeout. ctx may already
// be cancelled by shutdown.
func (d *Dispatcher) report(ctx context.Context, info *model.EventInfo, outcome *model.HookOutcome) {
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	if err := d.deps.Reporter.Report(reportCtx, info.StatusesURL, outcome.Status); err != nil {
		errutil.Handle(ctx, "failed to report status", err)
		outcome.Err = errors.Join(outcome.Err, err)
		return
	}

	ctxlog.From(ctx).Info("Reported hook status",
		"state", outcome.Status.State,
		"description", outcome.Status.Description,
	)
}

// Summary returns the delivery log view
func (d *Dispatcher) Summary() *model.DeliverySummary {
	return d.deps.Store.Summary()
}

// Accepting reports whether Shutdown has not started yet
func (d *Dispatcher) Accepting() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.closing
}

// InFlight returns the number of deliveries whose hooks are still being processed
func (d *Dispatcher) InFlight() int {
	return d.group.Running()
}

// Wait blocks until all scheduled deliveries finished or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	return d.group.Wait(ctx)
}

// RequestShutdown signals ShutdownRequested. It does not stop anything by itself.
func (d *Dispatcher) RequestShutdown() {
	d.requestOnce.Do(func() { close(d.shutdownReq) })
}

// ShutdownRequested is closed once RequestShutdown was called
func (d *Dispatcher) ShutdownRequested() <-chan struct{} {
	return d.shutdownReq
}

// Shutdown stops accepting deliveries and waits for in-flight ones until ctx is done. When
// the grace period expires the running hooks are killed. The store is closed afterwards.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.shutdownOnce.Do(func() {
		d.shutdownErr = d.shutdown(ctx)
	})
	return d.shutdownErr
}

func (d *Dispatcher) shutdown(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	var result error
	if err := d.group.Wait(ctx); err != nil {
		logger.Warn("Grace period expired, terminating running hooks", "error", err)
		d.group.Cancel()

		waitCtx, cancel := context.WithTimeout(context.Background(), forcedStopWait)
		defer cancel()
		if err := d.group.Wait(waitCtx); err != nil {
			logger.Error("Hooks did not stop after termination", "error", err)
		}
		result = goerr.Wrap(err, "in-flight deliveries were terminated")
	}
	d.group.Cancel()

	if err := d.deps.Store.Close(); err != nil {
		result = errors.Join(result, goerr.Wrap(err, "failed to close delivery store"))
	}

	logger.Info("Dispatcher stopped")
	return result
}
