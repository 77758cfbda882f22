package gitrepo_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// fixtureRepo is a real on-disk git repository built commit by commit
// through go-git, so the enumerator and retriever are exercised against
// genuine git objects.
type fixtureRepo struct {
	t    *testing.T
	path string
	wt   *git.Worktree
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()

	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &fixtureRepo{t: t, path: path, wt: wt}
}

// commit writes the given files, stages them, and commits. When parent
// hashes are supplied they replace the default HEAD parent, which lets
// tests fabricate merge commits with an explicit parent order.
func (f *fixtureRepo) commit(message string, files map[string]string, parents ...string) string {
	f.t.Helper()

	for path, content := range files {
		require.NoError(f.t, util.WriteFile(f.wt.Filesystem, path, []byte(content), 0o644))
		_, err := f.wt.Add(path)
		require.NoError(f.t, err)
	}

	opts := &git.CommitOptions{Author: fixtureSignature()}
	for _, parent := range parents {
		opts.Parents = append(opts.Parents, plumbing.NewHash(parent))
	}

	hash, err := f.wt.Commit(message, opts)
	require.NoError(f.t, err)
	return hash.String()
}

// remove deletes and stages the removal of a file.
func (f *fixtureRepo) remove(path string) {
	f.t.Helper()
	_, err := f.wt.Remove(path)
	require.NoError(f.t, err)
}

func fixtureSignature() *object.Signature {
	return &object.Signature{
		Name:  "Fixture Author",
		Email: "fixture@example.com",
		When:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// sourceFile generates a plausible source file of exactly lines lines,
// with a marker line so versions differ where tests need them to.
func sourceFile(lines int, marker string) string {
	var b strings.Builder
	b.WriteString("// " + marker + "\n")
	for i := 1; i < lines; i++ {
		fmt.Fprintf(&b, "var line%d = %d\n", i, i)
	}
	return b.String()
}
