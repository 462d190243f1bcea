package github

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

const shaPlaceholder = "{sha}"

var refPrefixes = []string{"refs/heads/", "refs/tags/"}

// pushRepositoryURLs carries the push repository fields go-github does not decode for us
type pushRepositoryURLs struct {
	Repository struct {
		StatusesURL string `json:"statuses_url"`
	} `json:"repository"`
}

// Decode turns a raw webhook body into a normalized EventInfo.
// Events other than push and pull_request decode to EventKindOther without looking at the body.
func Decode(event string, payload []byte) (*model.EventInfo, error) {
	switch model.ParseEventKind(event) {
	case model.EventKindPush:
		return decodePush(event, payload)
	case model.EventKindPullRequest:
		return decodePullRequest(event, payload)
	default:
		return &model.EventInfo{Kind: model.EventKindOther, Event: event}, nil
	}
}

func decodePush(event string, payload []byte) (*model.EventInfo, error) {
	parsed, err := github.ParseWebHook(event, payload)
	if err != nil {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "failed to parse push payload", goerr.V("cause", err.Error()))
	}
	push, ok := parsed.(*github.PushEvent)
	if !ok || push.GetRepo() == nil {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "push payload has no repository")
	}

	commit := push.GetHeadCommit().GetID()
	if commit == "" {
		commit = push.GetAfter()
	}
	if push.GetDeleted() || isZeroSHA(commit) {
		// Branch deletion: nothing to check out or report against
		return &model.EventInfo{Kind: model.EventKindOther, Event: event}, nil
	}

	var urls pushRepositoryURLs
	if err := json.Unmarshal(payload, &urls); err != nil {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "failed to read repository statuses_url", goerr.V("cause", err.Error()))
	}

	owner := push.GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = push.GetRepo().GetOwner().GetName()
	}

	info := &model.EventInfo{
		Kind:   model.EventKindPush,
		Event:  event,
		Owner:  owner,
		Repo:   push.GetRepo().GetName(),
		Branch: stripRefPrefix(push.GetRef()),
		Commit: commit,
	}

	if err := requireFields(
		field{"repository.owner", info.Owner},
		field{"repository.name", info.Repo},
		field{"ref", info.Branch},
		field{"head_commit.id", info.Commit},
	); err != nil {
		return nil, err
	}

	info.StatusesURL, err = expandStatusesURL(urls.Repository.StatusesURL, commit)
	if err != nil {
		return nil, err
	}

	return info, nil
}

func decodePullRequest(event string, payload []byte) (*model.EventInfo, error) {
	parsed, err := github.ParseWebHook(event, payload)
	if err != nil {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "failed to parse pull_request payload", goerr.V("cause", err.Error()))
	}
	prEvent, ok := parsed.(*github.PullRequestEvent)
	if !ok || prEvent.GetPullRequest() == nil {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "pull_request payload has no pull_request object")
	}

	pr := prEvent.GetPullRequest()
	head := pr.GetHead()
	base := pr.GetBase()

	number := prEvent.GetNumber()
	if number == 0 {
		number = pr.GetNumber()
	}
	if number == 0 {
		return nil, goerr.Wrap(types.ErrMalformedPayload, "pull_request payload has no number")
	}

	info := &model.EventInfo{
		Kind:      model.EventKindPullRequest,
		Event:     event,
		Owner:     head.GetRepo().GetOwner().GetLogin(),
		Repo:      head.GetRepo().GetName(),
		Branch:    head.GetRef(),
		Commit:    head.GetSHA(),
		BaseOwner: base.GetRepo().GetOwner().GetLogin(),
		BaseRepo:  base.GetRepo().GetName(),
		PRNumber:  strconv.Itoa(number),
	}

	ownerField, repoField := "pull_request.head.repo.owner.login", "pull_request.head.repo.name"
	if head.GetRepo() == nil {
		// Deleted fork: the head user still names the owner, the fork kept the base name
		info.Owner = head.GetUser().GetLogin()
		info.Repo = info.BaseRepo
		ownerField, repoField = "pull_request.head.user.login", "pull_request.base.repo.name"
	}

	if err := requireFields(
		field{"pull_request.head.sha", info.Commit},
		field{"pull_request.head.ref", info.Branch},
		field{ownerField, info.Owner},
		field{repoField, info.Repo},
		field{"pull_request.base.repo.owner.login", info.BaseOwner},
		field{"pull_request.base.repo.name", info.BaseRepo},
	); err != nil {
		return nil, err
	}

	switch tmpl := head.GetRepo().GetStatusesURL(); {
	case tmpl != "":
		info.StatusesURL, err = expandStatusesURL(tmpl, info.Commit)
	case pr.GetStatusesURL() != "":
		// Head repository is gone (deleted fork); the PR still carries a concrete URL
		info.StatusesURL, err = expandStatusesURL(pr.GetStatusesURL(), info.Commit)
	default:
		err = goerr.Wrap(types.ErrMalformedPayload, "pull_request payload has no statuses_url")
	}
	if err != nil {
		return nil, err
	}

	return info, nil
}

// expandStatusesURL substitutes commit into a statuses URL template. A URL that already
// names a SHA is accepted only if it names commit.
func expandStatusesURL(tmpl, commit string) (string, error) {
	if tmpl == "" {
		return "", goerr.Wrap(types.ErrMalformedPayload, "missing statuses_url")
	}
	if strings.Contains(tmpl, shaPlaceholder) {
		return strings.Replace(tmpl, shaPlaceholder, commit, 1), nil
	}
	if strings.HasSuffix(tmpl, "/"+commit) {
		return tmpl, nil
	}
	return "", goerr.Wrap(types.ErrMalformedPayload, "statuses_url does not match commit",
		goerr.V("statuses_url", tmpl), goerr.V("commit", commit))
}

func stripRefPrefix(ref string) string {
	for _, prefix := range refPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}

func isZeroSHA(sha string) bool {
	return sha != "" && strings.Trim(sha, "0") == ""
}

type field struct {
	name  string
	value string
}

// requireFields reports the first empty field in argument order
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return goerr.Wrap(types.ErrMalformedPayload, "required field is missing", goerr.V("field", f.name))
		}
	}
	return nil
}

// Decoder adapts Decode to interfaces.PayloadDecoder
type Decoder struct{}

// Decode calls the package level Decode
func (Decoder) Decode(event string, payload []byte) (*model.EventInfo, error) {
	return Decode(event, payload)
}
