package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// StatusState is a GitHub commit status state
type StatusState string

const (
	StatusSuccess StatusState = "success"
	StatusFailure StatusState = "failure"
)

// MaxDescriptionLength is the GitHub limit for generated descriptions
const MaxDescriptionLength = 140

const (
	DescriptionTimedOut       = "timed out"
	DescriptionCheckoutFailed = "checkout failed"
	DescriptionExecutionFault = "hook could not be started"
	DescriptionWorkDir        = "working directory unavailable"
	DescriptionCancelled      = "cancelled before start"
)

// CommitStatus is the payload posted to a statuses URL
type CommitStatus struct {
	State       StatusState
	Description string
	Context     string
}

// StatusContext returns the status context for a hook
func StatusContext(prefix string, hook *HookDescriptor) string {
	return prefix + "/" + hook.Name
}

// NewCommitStatus derives the status reported for a finished hook
func NewCommitStatus(statusContext string, result *HookResult) *CommitStatus {
	status := &CommitStatus{
		State:   StatusFailure,
		Context: statusContext,
	}
	if result.ExitCode == 0 && !result.TimedOut {
		status.State = StatusSuccess
	}

	switch {
	case result.DescriptionOverride != nil:
		status.Description = *result.DescriptionOverride
	case result.TimedOut:
		status.Description = DescriptionTimedOut
	default:
		status.Description = defaultDescription(result)
	}

	return status
}

// NewFailureStatus builds a failure status for a hook the engine could not run
func NewFailureStatus(statusContext, description string) *CommitStatus {
	return &CommitStatus{
		State:       StatusFailure,
		Description: description,
		Context:     statusContext,
	}
}

func defaultDescription(result *HookResult) string {
	desc := string(StatusSuccess)
	if result.ExitCode != 0 {
		desc = fmt.Sprintf("%s (exit %d)", StatusFailure, result.ExitCode)
	}

	out := strings.TrimSpace(result.Stdout)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	if out != "" {
		desc += ": " + out
	}

	return truncate(desc, MaxDescriptionLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
