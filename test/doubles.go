// Package testdoubles provides test doubles (spies, stubs, dummies) for
// domain interfaces. These are hand-crafted implementations — no mock
// frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rios0rios0/vulnpairs/domain"
)

// ---------------------------------------------------------------------------
// SpyStore
// ---------------------------------------------------------------------------

// SpyStore implements domain.RepositoryStore as a configurable spy.
// Paths maps a repository URL to the local path to hand back; URLs
// missing from the map fail with FailErr (or a default error).
type SpyStore struct {
	Paths   map[string]string
	FailErr error

	mu sync.Mutex
	// spy: URLs that were requested, in order
	EnsuredURLs []string
}

var _ domain.RepositoryStore = (*SpyStore)(nil)

func (s *SpyStore) EnsureLocal(_ context.Context, repoURL string) (string, error) {
	s.mu.Lock()
	s.EnsuredURLs = append(s.EnsuredURLs, repoURL)
	s.mu.Unlock()

	if path, ok := s.Paths[repoURL]; ok {
		return path, nil
	}
	if s.FailErr != nil {
		return "", s.FailErr
	}
	return "", fmt.Errorf("unreachable repository: %s", repoURL)
}

// ---------------------------------------------------------------------------
// StubEnumerator
// ---------------------------------------------------------------------------

// StubEnumerator implements domain.ChangeEnumerator with a canned
// change set (or error).
type StubEnumerator struct {
	Set *domain.ChangeSet
	Err error
}

var _ domain.ChangeEnumerator = (*StubEnumerator)(nil)

func (e *StubEnumerator) EnumerateChanges(
	_ context.Context,
	_, commitHash string,
) (*domain.ChangeSet, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Set != nil {
		return e.Set, nil
	}
	return &domain.ChangeSet{CommitHash: commitHash}, nil
}

// ---------------------------------------------------------------------------
// StubRetriever
// ---------------------------------------------------------------------------

// StubRetriever implements domain.ContentRetriever from a map keyed by
// "commitHash:filePath". Missing keys are unavailable, like the real
// retriever's contract.
type StubRetriever struct {
	Contents map[string]string

	mu sync.Mutex
	// spy: keys that were requested
	RequestedKeys []string
}

var _ domain.ContentRetriever = (*StubRetriever)(nil)

func (r *StubRetriever) Retrieve(
	_ context.Context,
	_, filePath, commitHash string,
) (string, error) {
	key := commitHash + ":" + filePath

	r.mu.Lock()
	r.RequestedKeys = append(r.RequestedKeys, key)
	r.mu.Unlock()

	if content, ok := r.Contents[key]; ok {
		return content, nil
	}
	return "", domain.ErrUnavailable
}

// ---------------------------------------------------------------------------
// StubSource
// ---------------------------------------------------------------------------

// StubSource implements domain.RecordSource over a fixed slice,
// returning io.EOF when exhausted (or Err once the slice runs out).
type StubSource struct {
	Records []domain.VulnerabilityRecord
	Err     error

	next int
}

var _ domain.RecordSource = (*StubSource)(nil)

func (s *StubSource) Next() (domain.VulnerabilityRecord, error) {
	if s.next >= len(s.Records) {
		if s.Err != nil {
			return domain.VulnerabilityRecord{}, s.Err
		}
		return domain.VulnerabilityRecord{}, io.EOF
	}
	record := s.Records[s.next]
	s.next++
	return record, nil
}

// ---------------------------------------------------------------------------
// SpySink
// ---------------------------------------------------------------------------

// SpySink implements domain.RecordSink by collecting every record in
// memory. WriteErr makes the next Write fail.
type SpySink struct {
	WriteErr error
	FlushErr error

	mu sync.Mutex
	// spy: everything written, in write order
	Records []domain.CodeRecord
	Flushes int
}

var _ domain.RecordSink = (*SpySink)(nil)

func (s *SpySink) Write(record domain.CodeRecord) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, record)
	return nil
}

func (s *SpySink) Flush() error {
	if s.FlushErr != nil {
		return s.FlushErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Flushes++
	return nil
}
