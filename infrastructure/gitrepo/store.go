// Package gitrepo is the go-git backed version-control backend: it
// acquires local clones, diffs fix commits against their first parent,
// and reads validated file snapshots at a given commit.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/vulnpairs/domain"
)

// Store caches cloned repositories under a base directory, one
// subdirectory per repository name.
type Store struct {
	baseDir string
	group   singleflight.Group
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

var _ domain.RepositoryStore = (*Store)(nil)

// EnsureLocal returns the local path for repoURL, cloning it on first
// use. An existing directory is reused as-is, never re-cloned.
// Acquisition is serialized per target path: concurrent rows sharing a
// repository wait for one clone instead of racing into the same
// directory.
func (s *Store) EnsureLocal(ctx context.Context, repoURL string) (string, error) {
	path := filepath.Join(s.baseDir, RepoDirName(repoURL))

	_, err, _ := s.group.Do(path, func() (any, error) {
		return nil, s.acquire(ctx, repoURL, path)
	})
	if err != nil {
		return "", err
	}

	return path, nil
}

// acquire clones repoURL into path unless a copy already exists. It
// runs at most once per path at a time, so the failure cleanup below
// can only ever remove a directory this call created itself.
func (s *Store) acquire(ctx context.Context, repoURL, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create repos directory %q: %w", s.baseDir, err)
	}

	logger.Infof("Cloning %s", repoURL)

	//nolint:exhaustruct // only the URL is needed for a full clone
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{URL: repoURL})
	if err != nil {
		// A failed clone leaves a partial directory behind that would
		// shadow a retry on the next run.
		_ = os.RemoveAll(path)
		return fmt.Errorf("failed to clone %q: %w", repoURL, err)
	}

	return nil
}

// RepoDirName derives the cache directory name from a repository URL:
// the last path segment with any trailing ".git" stripped.
func RepoDirName(repoURL string) string {
	trimmed := strings.TrimSuffix(repoURL, "/")
	name := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		name = trimmed[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}
