package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-matcher/internal/fetch"
)

// ErrUnsupportedFormat is returned when a file extension has no extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractFromFile reads a resume or job description file and returns its raw
// text. Plain text formats are read directly; PDF and word-processor formats
// go through document conversion with a chain of fallbacks for damaged PDFs.
func ExtractFromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("file not found: %w", err)
			}
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case ".html", ".htm":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		text, err := fetch.ExtractMainText(string(content), fetch.JobPostingSelectors())
		if err != nil {
			return "", fmt.Errorf("failed to extract text from HTML: %w", err)
		}
		return text, nil
	case ".pdf":
		return extractPDF(path)
	case ".docx", ".doc", ".odt", ".rtf":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s: %w", ext, err)
		}
		return res.Body, nil
	default:
		return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
}

// extractPDF tries the converters from most to least capable. Scanned or
// damaged PDFs frequently defeat the primary converter, so a direct text
// read and then a raw byte scan back it up.
func extractPDF(path string) (string, error) {
	if res, err := docconv.ConvertPath(path); err == nil && strings.TrimSpace(res.Body) != "" {
		return res.Body, nil
	}

	if text, err := pdfPlainText(path); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	text, err := rawTextScan(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF %s: %w", path, err)
	}
	return text, nil
}

// pdfPlainText reads the PDF content streams directly.
func pdfPlainText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rawTextScan pulls printable character runs straight out of the file bytes.
// The output is rough but gives downstream keyword extraction something to
// work with when both PDF readers fail.
func rawTextScan(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var run []rune
	flush := func() {
		// Runs shorter than 4 characters are almost always stream noise.
		if len(run) >= 4 {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(string(run))
		}
		run = run[:0]
	}

	for _, r := range string(data) {
		if r == unicode.ReplacementChar || (!unicode.IsPrint(r) && r != ' ') {
			flush()
			continue
		}
		run = append(run, r)
	}
	flush()

	return sb.String(), nil
}
