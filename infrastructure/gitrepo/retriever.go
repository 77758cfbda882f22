package gitrepo

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/vulnpairs/domain"
)

// Retriever reads one file snapshot at a commit and validates it for
// pairing. All failure modes collapse into domain.ErrUnavailable so a
// single bad file can never abort a whole row.
type Retriever struct {
	maxFileSize int64
	minLines    int
	decoder     domain.TextDecoder
}

// NewRetriever creates a retriever with the given size and line gates.
func NewRetriever(maxFileSize int64, minLines int, decoder domain.TextDecoder) *Retriever {
	return &Retriever{
		maxFileSize: maxFileSize,
		minLines:    minLines,
		decoder:     decoder,
	}
}

var _ domain.ContentRetriever = (*Retriever)(nil)

// Retrieve returns the decoded text of filePath at commitHash, or
// domain.ErrUnavailable when the file is missing, oversized, too short,
// or unreadable.
func (r *Retriever) Retrieve(
	_ context.Context,
	repoPath, filePath, commitHash string,
) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		logger.Warnf("Error reading %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}

	commit, err := resolveCommit(repo, commitHash)
	if err != nil {
		logger.Warnf("Error reading %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}

	file, err := commit.File(filePath)
	if err != nil {
		logger.Warnf("Error reading %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}

	// Oversized blobs are almost never hand-written source (bundles,
	// generated code, binaries) and would dominate memory.
	if file.Size > r.maxFileSize {
		return "", domain.ErrUnavailable
	}

	reader, err := file.Blob.Reader()
	if err != nil {
		logger.Warnf("Error reading %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}
	defer func() { _ = reader.Close() }()

	raw, err := io.ReadAll(reader)
	if err != nil {
		logger.Warnf("Error reading %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}

	text, err := r.decoder.DecodeText(raw)
	if err != nil {
		logger.Warnf("Error decoding %s at %s: %v", filePath, commitHash, err)
		return "", domain.ErrUnavailable
	}

	if lineCount(text) < r.minLines {
		return "", domain.ErrUnavailable
	}

	return text, nil
}

// lineCount counts lines the way a line-splitting parser would: LF,
// CR, and CRLF each end a line, and a trailing terminator does not open
// an extra empty line.
func lineCount(text string) int {
	if text == "" {
		return 0
	}

	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			count++
		case '\r':
			count++
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		}
	}

	if last := text[len(text)-1]; last != '\n' && last != '\r' {
		count++
	}
	return count
}
