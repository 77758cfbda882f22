package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/vulnpairs/infrastructure/gitrepo"
)

func TestRepoDirName(t *testing.T) {
	t.Parallel()

	t.Run("should use the last URL segment without the .git suffix", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "struts", gitrepo.RepoDirName("https://github.com/apache/struts.git"))
	})

	t.Run("should keep a plain segment unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "linux", gitrepo.RepoDirName("https://github.com/torvalds/linux"))
	})

	t.Run("should ignore a trailing slash", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "openssl", gitrepo.RepoDirName("https://github.com/openssl/openssl/"))
	})

	t.Run("should handle a bare local path", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "project", gitrepo.RepoDirName("/srv/git/project.git"))
	})
}

func TestStore_EnsureLocal(t *testing.T) {
	t.Parallel()

	t.Run("should clone on first use and reuse afterwards", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newFixtureRepo(t)
		fixture.commit("initial", map[string]string{"main.go": sourceFile(60, "v1")})
		store := gitrepo.NewStore(filepath.Join(t.TempDir(), "cloned_repos"))

		// when
		first, err := store.EnsureLocal(context.Background(), fixture.path)

		// then
		require.NoError(t, err)
		assert.DirExists(t, filepath.Join(first, ".git"))

		// given a marker that would disappear if the store re-cloned
		marker := filepath.Join(first, "marker.txt")
		require.NoError(t, os.WriteFile(marker, []byte("keep"), 0o600))

		// when
		second, err := store.EnsureLocal(context.Background(), fixture.path)

		// then
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.FileExists(t, marker)
	})

	t.Run("should clone exactly once for concurrent rows sharing a repository", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newFixtureRepo(t)
		fixture.commit("initial", map[string]string{"main.go": sourceFile(60, "v1")})
		store := gitrepo.NewStore(filepath.Join(t.TempDir(), "cloned_repos"))

		// when
		const callers = 8
		paths := make([]string, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				paths[i], errs[i] = store.EnsureLocal(context.Background(), fixture.path)
			}()
		}
		wg.Wait()

		// then every caller gets the same intact clone
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, paths[0], paths[i])
		}
		assert.DirExists(t, filepath.Join(paths[0], ".git"))
	})

	t.Run("should fail and leave no partial clone for an unreachable source", func(t *testing.T) {
		t.Parallel()

		// given
		baseDir := filepath.Join(t.TempDir(), "cloned_repos")
		store := gitrepo.NewStore(baseDir)

		// when
		_, err := store.EnsureLocal(context.Background(), "/definitely/not/a/repo.git")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to clone")
		assert.NoDirExists(t, filepath.Join(baseDir, "repo"))
	})
}
