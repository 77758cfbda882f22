// Package dataset reads the input table of fix commits and appends the
// extracted code records to the output table. Both sides are plain CSV
// with a header row.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rios0rios0/vulnpairs/domain"
)

// Required input columns.
const (
	columnCVEID      = "cve_id"
	columnRepoURL    = "repo_url"
	columnCommitHash = "commit_hash"
)

// CSVSource streams vulnerability records from a CSV file. Rows whose
// repository URL or commit hash is empty after trimming never reach the
// caller.
type CSVSource struct {
	file   *os.File
	reader *csv.Reader
	cveIdx int
	urlIdx int
	refIdx int
}

// OpenCSVSource opens the input file and validates its header. Missing
// required columns are a fatal input-format failure.
func OpenCSVSource(path string) (*CSVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read input header: %w", err)
	}

	source := &CSVSource{file: file, reader: reader, cveIdx: -1, urlIdx: -1, refIdx: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columnCVEID:
			source.cveIdx = i
		case columnRepoURL:
			source.urlIdx = i
		case columnCommitHash:
			source.refIdx = i
		}
	}

	for _, required := range []struct {
		name string
		idx  int
	}{
		{columnCVEID, source.cveIdx},
		{columnRepoURL, source.urlIdx},
		{columnCommitHash, source.refIdx},
	} {
		if required.idx < 0 {
			_ = file.Close()
			return nil, fmt.Errorf("input file %q is missing required column %q", path, required.name)
		}
	}

	return source, nil
}

var _ domain.RecordSource = (*CSVSource)(nil)

// Next returns the next usable row, or io.EOF after the last one. A
// malformed row is a fatal input-format failure.
func (s *CSVSource) Next() (domain.VulnerabilityRecord, error) {
	for {
		row, err := s.reader.Read()
		if err != nil {
			return domain.VulnerabilityRecord{}, err
		}

		record := domain.VulnerabilityRecord{
			CVEID:      row[s.cveIdx],
			RepoURL:    strings.TrimSpace(row[s.urlIdx]),
			CommitHash: strings.TrimSpace(row[s.refIdx]),
		}
		if record.RepoURL == "" || record.CommitHash == "" {
			continue
		}
		return record, nil
	}
}

// Close releases the underlying file.
func (s *CSVSource) Close() error {
	return s.file.Close()
}
