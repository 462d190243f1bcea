// Package git keeps one working copy per repository and serializes access to it.
package git

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/semaphore"

	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

const (
	DefaultBaseURL = "https://github.com"

	remoteName = "origin"
	fetchSpec  = "+refs/heads/*:refs/remotes/origin/*"
)

// config holds internal coordinator configuration
type config struct {
	cloneURL func(owner, repo string) string
	tokens   interfaces.TokenSource
}

// Option is a functional option for Coordinator configuration
type Option func(*config)

// WithBaseURL clones from <base>/<owner>/<repo>.git
func WithBaseURL(base string) Option {
	base = strings.TrimSuffix(base, "/")
	return WithCloneURL(func(owner, repo string) string {
		return base + "/" + owner + "/" + repo + ".git"
	})
}

// WithCloneURL sets how the clone URL of a repository is built
func WithCloneURL(fn func(owner, repo string) string) Option {
	return func(c *config) {
		c.cloneURL = fn
	}
}

// WithTokenSource authenticates clone and fetch with an access token
func WithTokenSource(ts interfaces.TokenSource) Option {
	return func(c *config) {
		c.tokens = ts
	}
}

// Coordinator owns the working directories under root. At most one holder of Lock exists
// per (owner, repo); distinct repositories never contend.
type Coordinator struct {
	root string
	cfg  config

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewCoordinator creates a Coordinator rooted at root
func NewCoordinator(root string, opts ...Option) *Coordinator {
	c := &Coordinator{
		root:  root,
		locks: make(map[string]*semaphore.Weighted),
	}
	WithBaseURL(DefaultBaseURL)(&c.cfg)
	for _, opt := range opts {
		opt(&c.cfg)
	}
	return c
}

// Lock acquires the per-repository token. It blocks until the token is free or ctx is done.
func (c *Coordinator) Lock(ctx context.Context, owner, repo string) (func(), error) {
	sem := c.semaphore(owner + "/" + repo)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, goerr.Wrap(err, "failed to acquire repository lock",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

func (c *Coordinator) semaphore(key string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()

	sem, ok := c.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.locks[key] = sem
	}
	return sem
}

// WorkDir returns the working directory path of a repository
func (c *Coordinator) WorkDir(owner, repo string) string {
	return filepath.Join(c.root, owner, repo)
}

// EnsureDir returns the working directory, creating it when missing
func (c *Coordinator) EnsureDir(owner, repo string) (string, error) {
	if err := validateName(owner, repo); err != nil {
		return "", err
	}
	dir := c.WorkDir(owner, repo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create working directory", goerr.V("dir", dir))
	}
	return dir, nil
}

// EnsureCheckedOut clones or fetches the repository and force-checks out ref, which is a
// full commit SHA or a branch name. The caller must hold Lock for the repository.
func (c *Coordinator) EnsureCheckedOut(ctx context.Context, owner, repo, ref string) (string, error) {
	logger := ctxlog.From(ctx)

	dir, err := c.EnsureDir(owner, repo)
	if err != nil {
		return "", goerr.Wrap(types.ErrCheckoutFailed, "invalid working directory", goerr.V("cause", err.Error()))
	}

	auth, err := c.auth(ctx)
	if err != nil {
		return "", goerr.Wrap(types.ErrCheckoutFailed, "failed to obtain git credentials", goerr.V("cause", err.Error()))
	}

	repository, err := gogit.PlainOpen(dir)
	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		url := c.cfg.cloneURL(owner, repo)
		logger.Info("Cloning repository", "url", url, "dir", dir)
		repository, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
			URL:        url,
			RemoteName: remoteName,
			Auth:       auth,
		})
		if err != nil {
			return "", checkoutError(err, "failed to clone repository", owner, repo, ref)
		}

	case err != nil:
		return "", checkoutError(err, "failed to open repository", owner, repo, ref)

	default:
		logger.Debug("Fetching repository", "dir", dir)
		err = repository.FetchContext(ctx, &gogit.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   []gitconfig.RefSpec{fetchSpec},
			Auth:       auth,
			Force:      true,
		})
		if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return "", checkoutError(err, "failed to fetch repository", owner, repo, ref)
		}
	}

	hash, err := resolve(repository, ref)
	if err != nil {
		return "", checkoutError(err, "failed to resolve ref", owner, repo, ref)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return "", checkoutError(err, "failed to get worktree", owner, repo, ref)
	}

	if err := worktree.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return "", checkoutError(err, "failed to checkout", owner, repo, ref)
	}

	logger.Info("Checked out repository",
		"owner", owner,
		"repo", repo,
		"ref", ref,
		"commit", hash.String(),
	)

	return dir, nil
}

func (c *Coordinator) auth(ctx context.Context) (transport.AuthMethod, error) {
	if c.cfg.tokens == nil {
		return nil, nil
	}
	token, err := c.cfg.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}, nil
}

func resolve(repository *gogit.Repository, ref string) (plumbing.Hash, error) {
	if isFullSHA(ref) {
		hash := plumbing.NewHash(ref)
		if _, err := repository.CommitObject(hash); err != nil {
			return plumbing.ZeroHash, err
		}
		return hash, nil
	}

	for _, rev := range []string{"refs/remotes/" + remoteName + "/" + ref, ref} {
		if hash, err := repository.ResolveRevision(plumbing.Revision(rev)); err == nil {
			return *hash, nil
		}
	}
	return plumbing.ZeroHash, plumbing.ErrReferenceNotFound
}

func isFullSHA(ref string) bool {
	if len(ref) != 40 {
		return false
	}
	_, err := hex.DecodeString(ref)
	return err == nil
}

func validateName(owner, repo string) error {
	for _, name := range []string{owner, repo} {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return goerr.New("invalid repository name", goerr.V("owner", owner), goerr.V("repo", repo))
		}
	}
	return nil
}

func checkoutError(err error, msg, owner, repo, ref string) error {
	return goerr.Wrap(types.ErrCheckoutFailed, msg,
		goerr.V("owner", owner),
		goerr.V("repo", repo),
		goerr.V("ref", ref),
		goerr.V("cause", err.Error()),
	)
}
