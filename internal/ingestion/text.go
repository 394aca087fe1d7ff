package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = sanitizeUTF8(content)

	// 1. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 2. Split into lines for processing
	lines := strings.Split(content, "\n")

	// 3. Process each line
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := cleanLine(line)
		cleanedLines = append(cleanedLines, cleaned)
	}

	// 4. Join lines
	result := strings.Join(cleanedLines, "\n")

	// 5. Remove excessive blank lines (max 2 consecutive)
	result = removeExcessiveBlankLines(result)

	// 6. Trim leading/trailing whitespace from entire content
	result = strings.TrimSpace(result)

	return result
}

// sanitizeUTF8 strips invalid byte sequences and NUL characters that PDF
// converters sometimes leave behind.
func sanitizeUTF8(content string) string {
	content = strings.ToValidUTF8(content, "")
	return strings.ReplaceAll(content, "\x00", "")
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	// Trim trailing whitespace
	line = strings.TrimRight(line, " \t")

	// Handle empty lines
	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Preserve headings (Markdown # or ## etc.)
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		// Keep markdown headings as-is, normalize leading spaces to 0
		return trimmed
	}

	// Preserve bullet lists, normalizing the bullet character
	if isBulletLine(line) {
		indent := len(line) - len(trimmed)
		for _, marker := range []string{"• ", "· "} {
			if strings.HasPrefix(trimmed, marker) {
				trimmed = "- " + strings.TrimLeft(strings.TrimPrefix(trimmed, marker), " \t")
				break
			}
		}
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	// For regular lines, normalize multiple spaces to single space
	// but preserve intentional indentation at start of line
	leadingSpace := len(line) - len(trimmed)
	content := strings.TrimSpace(line)
	content = multiSpaceRe.ReplaceAllString(content, " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// removeExcessiveBlankLines reduces consecutive blank lines to max 2
func removeExcessiveBlankLines(content string) string {
	// Replace 3+ consecutive newlines with 2 newlines
	re := regexp.MustCompile(`\n\n\n+`)
	return re.ReplaceAllString(content, "\n\n")
}

// IngestFromFile extracts text from a resume or job description file, cleans
// it, and returns the cleaned text with metadata. If a .meta.json sidecar
// from an earlier URL ingest sits next to the file, its provenance fields
// are merged in.
func IngestFromFile(path string) (string, *Metadata, error) {
	raw, err := ExtractFromFile(path)
	if err != nil {
		return "", nil, err
	}

	cleanedText := CleanText(raw)
	metadata := NewMetadata(cleanedText, "")
	metadata.SourceFile = filepath.Base(path)
	mergeSidecarMetadata(path, metadata)

	return cleanedText, metadata, nil
}

// mergeSidecarMetadata fills provenance fields from a .meta.json sidecar
// when present. Hash and timestamp always reflect the current ingest.
func mergeSidecarMetadata(path string, metadata *Metadata) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	candidates := []string{
		stem + ".meta.json",
		strings.TrimSuffix(stem, ".cleaned") + ".meta.json",
	}

	var data []byte
	for _, sidecar := range candidates {
		var err error
		if data, err = os.ReadFile(sidecar); err == nil {
			break
		}
		data = nil
	}
	if data == nil {
		return
	}

	var stored Metadata
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}

	if metadata.URL == "" {
		metadata.URL = stored.URL
	}
	if metadata.Platform == "" {
		metadata.Platform = stored.Platform
	}
	if len(metadata.ExtractedLinks) == 0 {
		metadata.ExtractedLinks = stored.ExtractedLinks
	}
}

// WriteOutput writes the cleaned text and metadata next to each other in
// outDir as <baseName>.cleaned.txt and <baseName>.meta.json.
func WriteOutput(outDir, baseName, cleanedText string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, baseName+".cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(cleanedText), 0o644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, baseName+".meta.json")
	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
