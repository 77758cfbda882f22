package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rios0rios0/vulnpairs/domain"
)

// CSVSink appends code records to a CSV file. The file is truncated on
// creation and the header is written exactly once; every run produces a
// fresh dataset.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

// CreateCSVSink creates (or truncates) the output file and writes the
// header row.
func CreateCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if writeErr := writer.Write([]string{"cve_id", "file_path", "code", "label"}); writeErr != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write output header: %w", writeErr)
	}

	return &CSVSink{file: file, writer: writer}, nil
}

var _ domain.RecordSink = (*CSVSink)(nil)

// Write appends one record.
func (s *CSVSink) Write(record domain.CodeRecord) error {
	row := []string{
		record.CVEID,
		record.FilePath,
		record.Code,
		strconv.Itoa(record.Label),
	}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write output row: %w", err)
	}
	return nil
}

// Flush pushes buffered rows to disk.
func (s *CSVSink) Flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying file.
func (s *CSVSink) Close() error {
	flushErr := s.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
