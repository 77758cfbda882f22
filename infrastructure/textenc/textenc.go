// Package textenc converts raw repository blobs to text. The character
// set is guessed heuristically; anything inconclusive falls back to
// UTF-8, and undecodable sequences are replaced instead of failing.
package textenc

import (
	"fmt"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// CharsetDetector guesses the IANA charset name of raw bytes. The
// second return is false when detection is inconclusive.
type CharsetDetector interface {
	DetectCharset(data []byte) (string, bool)
}

// ChardetDetector implements CharsetDetector on the chardet heuristic.
type ChardetDetector struct {
	detector *chardet.Detector
}

// NewChardetDetector creates a detector tuned for text content.
func NewChardetDetector() *ChardetDetector {
	return &ChardetDetector{detector: chardet.NewTextDetector()}
}

var _ CharsetDetector = (*ChardetDetector)(nil)

func (d *ChardetDetector) DetectCharset(data []byte) (string, bool) {
	result, err := d.detector.DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "", false
	}
	return result.Charset, true
}

// Decoder implements domain.TextDecoder with a pluggable detector.
type Decoder struct {
	detector CharsetDetector
}

// NewDecoder creates a decoder that consults the given detector before
// falling back to UTF-8.
func NewDecoder(detector CharsetDetector) *Decoder {
	return &Decoder{detector: detector}
}

// DecodeText decodes raw bytes using the detected charset, or UTF-8
// when detection fails or names a charset the platform cannot resolve.
// Invalid sequences become U+FFFD.
func (d *Decoder) DecodeText(data []byte) (string, error) {
	enc := encoding.Encoding(unicode.UTF8)
	if name, ok := d.detector.DetectCharset(data); ok {
		if resolved := resolveEncoding(name); resolved != nil {
			enc = resolved
		}
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode content: %w", err)
	}
	return string(decoded), nil
}

// resolveEncoding maps an IANA charset name to an encoding, or nil when
// the name is unknown or unsupported.
func resolveEncoding(name string) encoding.Encoding {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil
	}
	return enc
}
