package domain

import (
	"context"
	"errors"
)

// ErrUnavailable marks a file that was filtered out of pairing: missing
// at the commit, too large, too short, or unreadable. It is a filtering
// outcome rather than a failure — callers drop the file and move on.
var ErrUnavailable = errors.New("content unavailable")

// RepositoryStore acquires local clones addressable by commit hash.
// Implementations are idempotent: an existing copy is reused, never
// re-cloned.
type RepositoryStore interface {
	// EnsureLocal returns the local path of a fully fetched clone of
	// repoURL, cloning only when no copy exists yet.
	EnsureLocal(ctx context.Context, repoURL string) (string, error)
}

// ChangeEnumerator lists the files changed between a commit and its
// first parent. Additional parents of merge commits are ignored.
type ChangeEnumerator interface {
	// EnumerateChanges diffs commitHash against its first parent.
	// A root commit yields a ChangeSet with no parent and no entries.
	EnumerateChanges(ctx context.Context, repoPath, commitHash string) (*ChangeSet, error)
}

// ContentRetriever reads validated file text at a specific commit.
type ContentRetriever interface {
	// Retrieve returns the decoded text of filePath at commitHash.
	// Every failure mode — missing path, oversized blob, too few
	// lines, unreadable object — maps to ErrUnavailable; no other
	// error escapes.
	Retrieve(ctx context.Context, repoPath, filePath, commitHash string) (string, error)
}

// TextDecoder converts raw blob bytes to text, detecting the character
// set heuristically and replacing undecodable sequences with U+FFFD
// rather than failing the whole conversion.
type TextDecoder interface {
	DecodeText(data []byte) (string, error)
}

// RecordSource streams input rows. Next returns io.EOF after the last
// row; rows with an empty repository URL or commit hash are skipped
// before they reach the caller.
type RecordSource interface {
	Next() (VulnerabilityRecord, error)
}

// RecordSink persists output rows. A single writer appends records in
// the order given; Flush makes the rows written so far durable.
type RecordSink interface {
	Write(record CodeRecord) error
	Flush() error
}
