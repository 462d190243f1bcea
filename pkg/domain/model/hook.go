package model

import (
	"strings"
	"time"
)

// CheckoutMarker is the hook name suffix that requests a checkout before execution
const CheckoutMarker = "-checkout"

// HookDescriptor describes one executable found in the hooks directory
type HookDescriptor struct {
	Name             string    // File name
	EventKind        EventKind // Event kind encoded in the name
	Owner            string
	Repo             string
	Suffix           string // Remainder after <kind>-<owner>-<repo>, may be empty
	Path             string // Absolute or hooks-dir relative path
	RequiresCheckout bool
}

// HookPrefix returns the file name prefix shared by every hook of the tuple
func HookPrefix(kind EventKind, owner, repo string) string {
	return string(kind) + "-" + owner + "-" + repo
}

// NewHookDescriptor builds a descriptor from a file name already known to start with the prefix
func NewHookDescriptor(name, path string, kind EventKind, owner, repo string) *HookDescriptor {
	suffix := strings.TrimPrefix(name, HookPrefix(kind, owner, repo))
	return &HookDescriptor{
		Name:             name,
		EventKind:        kind,
		Owner:            owner,
		Repo:             repo,
		Suffix:           suffix,
		Path:             path,
		RequiresCheckout: strings.HasSuffix(suffix, CheckoutMarker),
	}
}

// HookResult is the outcome of one hook execution
type HookResult struct {
	ExitCode            int
	Stdout              string  // Combined standard output and error
	DescriptionOverride *string // Contents of status.txt, nil when absent
	TimedOut            bool
	Duration            time.Duration
}

// HookOutcome records everything the dispatcher learned about one hook
type HookOutcome struct {
	Hook   *HookDescriptor
	Result *HookResult // nil when the hook never ran
	Status *CommitStatus
	Err    error // checkout, execution or reporting failure
}
