// Package application orchestrates the extraction pipeline: it walks
// the input rows, pairs the vulnerable and fixed snapshots of each file
// a fix commit touched, and streams the labeled records to the sink.
package application

import (
	"context"
	"fmt"

	"github.com/rios0rios0/vulnpairs/config"
	"github.com/rios0rios0/vulnpairs/domain"
)

// PairBuilder turns the changes of one fix commit into labeled
// vulnerable/fixed record pairs. Records are emitted in pairs or not at
// all; a pair with only one retrievable side is dropped entirely.
type PairBuilder struct {
	enumerator domain.ChangeEnumerator
	retriever  domain.ContentRetriever
	cfg        *config.Config
}

// NewPairBuilder creates a builder over the given collaborators.
func NewPairBuilder(
	enumerator domain.ChangeEnumerator,
	retriever domain.ContentRetriever,
	cfg *config.Config,
) *PairBuilder {
	return &PairBuilder{
		enumerator: enumerator,
		retriever:  retriever,
		cfg:        cfg,
	}
}

// BuildPairs extracts all record pairs for one fix commit. Per changed
// file it keeps only in-place modifications of recognized source files
// where both versions pass retrieval and the text actually changed.
func (b *PairBuilder) BuildPairs(
	ctx context.Context,
	repoPath, cveID, commitHash string,
) ([]domain.CodeRecord, error) {
	set, err := b.enumerator.EnumerateChanges(ctx, repoPath, commitHash)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate changes of %q: %w", commitHash, err)
	}

	var records []domain.CodeRecord
	for _, entry := range set.Entries {
		// Additions, deletions, and renames have no same-path
		// before/after pair to offer.
		if entry.Kind != domain.ChangeModified {
			continue
		}
		if !b.cfg.RecognizesExtension(entry.PathAfter) {
			continue
		}

		vulnerable, beforeErr := b.retriever.Retrieve(ctx, repoPath, entry.PathBefore, set.ParentHash)
		if beforeErr != nil {
			continue
		}
		fixed, afterErr := b.retriever.Retrieve(ctx, repoPath, entry.PathAfter, set.CommitHash)
		if afterErr != nil {
			continue
		}

		// Identical text means the commit changed nothing this dataset
		// can learn from (metadata- or mode-only change).
		if vulnerable == fixed {
			continue
		}

		records = append(records,
			domain.CodeRecord{
				CVEID:    cveID,
				FilePath: entry.PathAfter,
				Code:     vulnerable,
				Label:    domain.LabelVulnerable,
			},
			domain.CodeRecord{
				CVEID:    cveID,
				FilePath: entry.PathAfter,
				Code:     fixed,
				Label:    domain.LabelFixed,
			},
		)
	}

	return records, nil
}
