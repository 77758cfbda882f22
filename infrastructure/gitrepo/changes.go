package gitrepo

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/vulnpairs/domain"
)

// Enumerator diffs a commit against its first parent. It is read-only
// and never mutates repository state.
type Enumerator struct{}

// NewEnumerator creates a change enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

var _ domain.ChangeEnumerator = (*Enumerator)(nil)

// EnumerateChanges resolves commitHash and computes the structural diff
// from its first parent. Merge commits keep only the first parent; a
// root commit has no "before" state and yields an empty set.
func (e *Enumerator) EnumerateChanges(
	ctx context.Context,
	repoPath, commitHash string,
) (*domain.ChangeSet, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}

	commit, err := resolveCommit(repo, commitHash)
	if err != nil {
		return nil, err
	}

	set := &domain.ChangeSet{CommitHash: commit.Hash.String()}

	if commit.NumParents() == 0 {
		logger.Warnf("No parent commit for %s", commitHash)
		return set, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parent of %q: %w", commitHash, err)
	}
	set.ParentHash = parent.Hash.String()

	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read parent tree of %q: %w", commitHash, err)
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %q: %w", commitHash, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, commitTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %q against its parent: %w", commitHash, err)
	}

	for _, change := range changes {
		entry, convErr := toChangeEntry(change)
		if convErr != nil {
			return nil, convErr
		}
		set.Entries = append(set.Entries, entry)
	}

	return set, nil
}

// resolveCommit turns a commit reference into a commit object.
func resolveCommit(repo *git.Repository, commitHash string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(commitHash))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commit %q: %w", commitHash, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %q: %w", commitHash, err)
	}

	return commit, nil
}

// toChangeEntry maps a go-git tree change onto the domain model.
func toChangeEntry(change *object.Change) (domain.ChangeEntry, error) {
	action, err := change.Action()
	if err != nil {
		return domain.ChangeEntry{}, fmt.Errorf("failed to classify change: %w", err)
	}

	entry := domain.ChangeEntry{
		PathBefore: change.From.Name,
		PathAfter:  change.To.Name,
	}

	switch action {
	case merkletrie.Insert:
		entry.Kind = domain.ChangeAdded
	case merkletrie.Delete:
		entry.Kind = domain.ChangeDeleted
	case merkletrie.Modify:
		if change.From.Name != change.To.Name {
			entry.Kind = domain.ChangeRenamed
		} else {
			entry.Kind = domain.ChangeModified
		}
	}

	return entry, nil
}
