package async

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/utils/errutil"
)

// Group runs handlers asynchronously and tracks them so they can be awaited or cancelled
// as a whole. Handler contexts are detached from the caller's context: cancelling an HTTP
// request does not stop the work it scheduled. Only Cancel does.
type Group struct {
	root    context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Int64
}

// NewGroup creates an empty Group
func NewGroup() *Group {
	root, cancel := context.WithCancel(context.Background())
	return &Group{root: root, cancel: cancel}
}

// Dispatch executes a handler function asynchronously with proper context and panic recovery
//
// Parameters:
//   - ctx: Original context (values will be preserved, but cancellation won't affect the async handler)
//   - handler: Function to execute asynchronously
//
// Behavior:
//   - Derives the handler context from the group root, with the ctxlog logger of ctx
//   - Executes handler in a new goroutine
//   - Recovers from panics and logs them
//   - Logs errors returned by handler
func (g *Group) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := ctxlog.With(g.root, ctxlog.From(ctx))

	g.wg.Add(1)
	g.running.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.running.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				errutil.Capture(goerr.New("panic in async handler", goerr.V("recover", r)))
			}
		}()

		if err := handler(newCtx); err != nil {
			errutil.Handle(newCtx, "error in async handler", err)
		}
	}()
}

// Wait blocks until every dispatched handler returned or ctx is done
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running returns the number of handlers that have not returned yet
func (g *Group) Running() int {
	return int(g.running.Load())
}

// Cancel cancels the context of every running and future handler
func (g *Group) Cancel() {
	g.cancel()
}
