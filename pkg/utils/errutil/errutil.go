// Package errutil logs errors that cannot be returned to a caller and forwards them to Sentry.
package errutil

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Handle logs err with msg and reports it to Sentry when a client is configured
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	ctxlog.From(ctx).Error(msg, "error", err)
	Capture(err)
}

// Capture reports err to Sentry. It is a no-op when Sentry has not been initialized.
func Capture(err error) {
	if err == nil {
		return
	}
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}
}

// Flush waits for buffered Sentry events to be sent
func Flush(timeout time.Duration) {
	if sentry.CurrentHub().Client() != nil {
		sentry.Flush(timeout)
	}
}
