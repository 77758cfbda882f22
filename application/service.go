package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/vulnpairs/config"
	"github.com/rios0rios0/vulnpairs/domain"
)

// ExtractionService drives the pipeline: per input row it acquires the
// repository, builds the record pairs, and hands them to the sink. A
// failing row is logged and skipped; only input/output failures abort
// the run.
type ExtractionService struct {
	store   domain.RepositoryStore
	builder *PairBuilder
	cfg     *config.Config
}

// NewExtractionService creates a service over the given collaborators.
func NewExtractionService(
	store domain.RepositoryStore,
	builder *PairBuilder,
	cfg *config.Config,
) *ExtractionService {
	return &ExtractionService{
		store:   store,
		builder: builder,
		cfg:     cfg,
	}
}

// rowOutput carries one processed row to the single sink writer.
type rowOutput struct {
	record  domain.VulnerabilityRecord
	records []domain.CodeRecord
}

// Run processes every row from source and streams the results to sink.
// With workers > 1 independent rows are processed concurrently, but one
// writer serializes the sink so pairs stay adjacent and rows never
// interleave at record level.
func (s *ExtractionService) Run(
	ctx context.Context,
	source domain.RecordSource,
	sink domain.RecordSink,
) error {
	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	rows := make(chan domain.VulnerabilityRecord)
	results := make(chan rowOutput)

	group.Go(func() error {
		defer close(rows)
		for {
			record, err := source.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read input row: %w", err)
			}
			select {
			case rows <- record:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	group.Go(func() error {
		defer close(results)
		pool := new(errgroup.Group)
		for i := 0; i < workers; i++ {
			pool.Go(func() error {
				for record := range rows {
					output := rowOutput{record: record, records: s.processRow(ctx, record)}
					select {
					case results <- output:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return nil
			})
		}
		return pool.Wait()
	})

	group.Go(func() error {
		for output := range results {
			for _, record := range output.records {
				if err := sink.Write(record); err != nil {
					return err
				}
			}
			if err := sink.Flush(); err != nil {
				return err
			}
			logger.Infof(
				"Extracted %d code pairs for %s",
				len(output.records)/2, output.record.CVEID,
			)
		}
		return nil
	})

	return group.Wait()
}

// processRow handles one input row end to end. Every failure is
// contained here: the row yields zero records and the run continues.
func (s *ExtractionService) processRow(
	ctx context.Context,
	record domain.VulnerabilityRecord,
) []domain.CodeRecord {
	logger.Infof("Processing %s from %s", record.CVEID, record.RepoURL)

	repoPath, err := s.store.EnsureLocal(ctx, record.RepoURL)
	if err != nil {
		logger.Errorf("Error processing %s: %v", record.RepoURL, err)
		return nil
	}

	records, err := s.builder.BuildPairs(ctx, repoPath, record.CVEID, record.CommitHash)
	if err != nil {
		logger.Errorf("Error processing %s: %v", record.RepoURL, err)
		return nil
	}

	return records
}
