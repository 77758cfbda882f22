package dataset_test

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/vulnpairs/domain"
	"github.com/rios0rios0/vulnpairs/infrastructure/dataset"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVSource(t *testing.T) {
	t.Parallel()

	t.Run("should stream rows and trim url and hash", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeInput(t,
			"cve_id,repo_url,commit_hash\n"+
				"CVE-2021-44228, https://github.com/apache/logging-log4j2.git , abc123 \n")
		source, err := dataset.OpenCSVSource(path)
		require.NoError(t, err)
		defer func() { _ = source.Close() }()

		// when
		record, err := source.Next()

		// then
		require.NoError(t, err)
		assert.Equal(t, "CVE-2021-44228", record.CVEID)
		assert.Equal(t, "https://github.com/apache/logging-log4j2.git", record.RepoURL)
		assert.Equal(t, "abc123", record.CommitHash)

		// and the stream ends
		_, err = source.Next()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("should skip rows with empty url or hash", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeInput(t,
			"cve_id,repo_url,commit_hash\n"+
				"CVE-1,,abc\n"+
				"CVE-2,https://example.com/r.git,   \n"+
				"CVE-3,https://example.com/r.git,def\n")
		source, err := dataset.OpenCSVSource(path)
		require.NoError(t, err)
		defer func() { _ = source.Close() }()

		// when
		record, err := source.Next()

		// then
		require.NoError(t, err)
		assert.Equal(t, "CVE-3", record.CVEID)
	})

	t.Run("should tolerate reordered columns", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeInput(t,
			"commit_hash,cve_id,repo_url\n"+
				"abc,CVE-1,https://example.com/r.git\n")
		source, err := dataset.OpenCSVSource(path)
		require.NoError(t, err)
		defer func() { _ = source.Close() }()

		// when
		record, err := source.Next()

		// then
		require.NoError(t, err)
		assert.Equal(t, "CVE-1", record.CVEID)
		assert.Equal(t, "abc", record.CommitHash)
	})

	t.Run("should fail fast for a missing required column", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeInput(t, "cve_id,repository\nCVE-1,x\n")

		// when
		_, err := dataset.OpenCSVSource(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing required column "repo_url"`)
	})

	t.Run("should fail for a nonexistent input file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := dataset.OpenCSVSource(filepath.Join(t.TempDir(), "nope.csv"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open input file")
	})
}

func TestCSVSink(t *testing.T) {
	t.Parallel()

	t.Run("should write the header once and records with string labels", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "dataset.csv")
		sink, err := dataset.CreateCSVSink(path)
		require.NoError(t, err)

		// when
		require.NoError(t, sink.Write(domain.CodeRecord{
			CVEID: "CVE-1", FilePath: "auth.go", Code: "before\ncode\n", Label: domain.LabelVulnerable,
		}))
		require.NoError(t, sink.Write(domain.CodeRecord{
			CVEID: "CVE-1", FilePath: "auth.go", Code: "after\ncode\n", Label: domain.LabelFixed,
		}))
		require.NoError(t, sink.Close())

		// then
		file, err := os.Open(path)
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		rows, err := csv.NewReader(file).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"cve_id", "file_path", "code", "label"}, rows[0])
		assert.Equal(t, []string{"CVE-1", "auth.go", "before\ncode\n", "0"}, rows[1])
		assert.Equal(t, []string{"CVE-1", "auth.go", "after\ncode\n", "1"}, rows[2])
	})

	t.Run("should truncate a previous dataset", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "dataset.csv")
		require.NoError(t, os.WriteFile(path, []byte("stale data\n"), 0o600))

		// when
		sink, err := dataset.CreateCSVSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.Close())

		// then
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "cve_id,file_path,code,label\n", string(content))
	})
}
