package hookdir_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	"github.com/m-mizutani/gakoci/pkg/infra/hookdir"
	"github.com/m-mizutani/gakoci/pkg/infra/hookexec"
)

func writeHooks(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		gt.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\necho ok\n"), 0o755))
	}
	return dir
}

func hookNames(hooks []*model.HookDescriptor) []string {
	names := make([]string, 0, len(hooks))
	for _, h := range hooks {
		names = append(names, h.Name)
	}
	return names
}

func TestFind_PrefixMatches(t *testing.T) {
	dir := writeHooks(t,
		"push-octo-test-repo",
		"push-octo-test-repofoo",
		"push-octo-test-repobar",
		"push-octo-other",
		"pull_request-octo-test-repo-checkout",
		"Push-octo-test-repo",
	)
	gt.NoError(t, os.Mkdir(filepath.Join(dir, "push-octo-test-repo.d"), 0o755))

	hooks, err := hookdir.Find(dir, model.EventKindPush, "octo", "test-repo")
	gt.NoError(t, err)
	gt.Number(t, len(hookNames(hooks))).Equal(3)

	// Sorted by file name
	gt.Value(t, hookNames(hooks)).Equal([]string{
		"push-octo-test-repo",
		"push-octo-test-repobar",
		"push-octo-test-repofoo",
	})
	gt.Value(t, hooks[1].Suffix).Equal("bar")
	gt.Value(t, hooks[0].Path).Equal(filepath.Join(dir, "push-octo-test-repo"))
	gt.False(t, hooks[0].RequiresCheckout)
}

func TestFind_CheckoutMarker(t *testing.T) {
	dir := writeHooks(t, "pull_request-octo-test-repo-checkout")

	hooks, err := hookdir.Find(dir, model.EventKindPullRequest, "octo", "test-repo")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(1)
	gt.True(t, hooks[0].RequiresCheckout)
	gt.Value(t, hooks[0].EventKind).Equal(model.EventKindPullRequest)
}

func TestFind_NoMatch(t *testing.T) {
	dir := writeHooks(t, "push-octo-test-repo")

	hooks, err := hookdir.Find(dir, model.EventKindPush, "octo", "another")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(0)

	hooks, err = hookdir.Find(dir, model.EventKindOther, "octo", "test-repo")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(0)
}

func TestFind_MissingDir(t *testing.T) {
	_, err := hookdir.Find(filepath.Join(t.TempDir(), "missing"), model.EventKindPush, "o", "r")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrHooksDir))
}

func TestLocator_RescansEachCall(t *testing.T) {
	dir := writeHooks(t, "push-o-r")
	locator := hookdir.New(dir)

	hooks, err := locator.Find(model.EventKindPush, "o", "r")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(1)

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "push-o-r2"), []byte("#!/bin/sh\n"), 0o755))
	hooks, err = locator.Find(model.EventKindPush, "o", "r")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(2)
}

func TestCheck(t *testing.T) {
	gt.NoError(t, hookdir.Check(t.TempDir()))

	file := filepath.Join(t.TempDir(), "file")
	gt.NoError(t, os.WriteFile(file, nil, 0o644))
	gt.True(t, errors.Is(hookdir.Check(file), types.ErrHooksDir))
	gt.True(t, errors.Is(hookdir.Check(filepath.Join(t.TempDir(), "none")), types.ErrHooksDir))
}

func TestFind_RelativeDirRunsFromWorkDir(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	gt.NoError(t, os.Mkdir("testhooks", 0o755))
	gt.NoError(t, os.WriteFile(filepath.Join("testhooks", "push-octo-repo"),
		[]byte("#!/bin/sh\necho ran\n"), 0o755))
	workDir := filepath.Join(tmp, "work", "octo", "repo")
	gt.NoError(t, os.MkdirAll(workDir, 0o755))

	hooks, err := hookdir.Find("testhooks", model.EventKindPush, "octo", "repo")
	gt.NoError(t, err)
	gt.Number(t, len(hooks)).Equal(1)
	gt.True(t, filepath.IsAbs(hooks[0].Path))

	event := &model.EventInfo{Kind: model.EventKindPush, Event: "push", Owner: "octo", Repo: "repo"}
	result, err := hookexec.New().Run(context.Background(), hooks[0], event, workDir)
	gt.NoError(t, err)
	gt.Number(t, result.ExitCode).Equal(0)
	gt.Value(t, result.Stdout).Equal("ran\n")
}
