package model

// EventKind is the normalized family of a webhook event
type EventKind string

const (
	EventKindPush        EventKind = "push"
	EventKindPullRequest EventKind = "pull_request"
	EventKindOther       EventKind = "other"
)

// ParseEventKind maps an X-GitHub-Event header value to an EventKind
func ParseEventKind(event string) EventKind {
	switch EventKind(event) {
	case EventKindPush:
		return EventKindPush
	case EventKindPullRequest:
		return EventKindPullRequest
	default:
		return EventKindOther
	}
}

// EventInfo is the normalized record decoded from a webhook payload.
// For pull requests Owner and Repo refer to the head (fork) side.
type EventInfo struct {
	Kind  EventKind // Normalized kind
	Event string    // Raw X-GitHub-Event value (e.g. "ping")

	Owner       string // Repository owner
	Repo        string // Repository name
	Branch      string // Pushed branch or PR source branch
	Commit      string // Full commit SHA
	StatusesURL string // Status API URL for Commit

	BaseOwner string // PR target repository owner
	BaseRepo  string // PR target repository name
	PRNumber  string // PR number as decimal string
}

// Actionable reports whether the event can trigger hooks
func (e *EventInfo) Actionable() bool {
	return e.Kind == EventKindPush || e.Kind == EventKindPullRequest
}

// Env returns the event fields exposed to hook programs
func (e *EventInfo) Env() []string {
	return []string{
		"GAKOCI_EVENT=" + string(e.Kind),
		"GAKOCI_OWNER=" + e.Owner,
		"GAKOCI_REPO=" + e.Repo,
		"GAKOCI_BRANCH=" + e.Branch,
		"GAKOCI_COMMIT=" + e.Commit,
		"GAKOCI_PR_NUMBER=" + e.PRNumber,
		"GAKOCI_BASE_OWNER=" + e.BaseOwner,
		"GAKOCI_BASE_REPO=" + e.BaseRepo,
	}
}
