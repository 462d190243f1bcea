package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrMalformedPayload means a webhook body could not be decoded into an event.
	ErrMalformedPayload = goerr.New("malformed payload")

	// ErrHooksDir means the hooks directory could not be read.
	ErrHooksDir = goerr.New("hooks directory unavailable")

	// ErrCheckoutFailed covers clone, fetch, resolve and checkout failures.
	ErrCheckoutFailed = goerr.New("checkout failed")

	// ErrExecutionFault means a hook program could not be started at all.
	ErrExecutionFault = goerr.New("hook execution fault")

	// ErrReportingFailed means the commit status could not be posted.
	ErrReportingFailed = goerr.New("status reporting failed")

	ErrStoreClosed  = goerr.New("delivery store closed")
	ErrShuttingDown = goerr.New("dispatcher is shutting down")
)
