// Package hookdir discovers hook executables by file name prefix.
//
// A hook file is named <event_kind>-<owner>-<repo> followed by an arbitrary suffix. Every
// file whose name starts with that exact prefix matches the event, so several independent
// hooks can react to one delivery. A suffix ending in "-checkout" asks for the working copy
// to be checked out at the event's commit first.
package hookdir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

// Locator finds hooks in a fixed directory. The directory is rescanned on every call.
type Locator struct {
	dir string
}

// New creates a Locator for dir
func New(dir string) *Locator {
	return &Locator{dir: dir}
}

// Dir returns the scanned directory
func (l *Locator) Dir() string {
	return l.dir
}

// Find returns hooks for the tuple, see the package level Find
func (l *Locator) Find(kind model.EventKind, owner, repo string) ([]*model.HookDescriptor, error) {
	return Find(l.dir, kind, owner, repo)
}

// Find returns every hook in dir matching <kind>-<owner>-<repo>, sorted by file name.
// No match is not an error. Hook paths are absolute even when dir is relative, since hooks
// run with the working copy as their current directory.
func Find(dir string, kind model.EventKind, owner, repo string) ([]*model.HookDescriptor, error) {
	if kind == model.EventKindOther || owner == "" || repo == "" {
		return nil, nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(types.ErrHooksDir, "failed to resolve hooks directory",
			goerr.V("dir", dir), goerr.V("cause", err.Error()))
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, goerr.Wrap(types.ErrHooksDir, "failed to read hooks directory",
			goerr.V("dir", dir), goerr.V("cause", err.Error()))
	}

	prefix := model.HookPrefix(kind, owner, repo)
	var hooks []*model.HookDescriptor
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		hooks = append(hooks, model.NewHookDescriptor(
			entry.Name(), filepath.Join(absDir, entry.Name()), kind, owner, repo,
		))
	}

	// os.ReadDir already sorts, keep the ordering explicit
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Name < hooks[j].Name })

	return hooks, nil
}

// Check verifies dir exists and can be listed
func Check(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return goerr.Wrap(types.ErrHooksDir, "failed to stat hooks directory",
			goerr.V("dir", dir), goerr.V("cause", err.Error()))
	}
	if !info.IsDir() {
		return goerr.Wrap(types.ErrHooksDir, "hooks path is not a directory", goerr.V("dir", dir))
	}
	if _, err := os.ReadDir(dir); err != nil {
		return goerr.Wrap(types.ErrHooksDir, "failed to read hooks directory",
			goerr.V("dir", dir), goerr.V("cause", err.Error()))
	}
	return nil
}
