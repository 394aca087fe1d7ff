package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata records provenance for an ingested resume or job description.
type Metadata struct {
	URL            string   `json:"url,omitempty"`
	SourceFile     string   `json:"source_file,omitempty"`
	Timestamp      string   `json:"timestamp"`                 // RFC3339 format
	Hash           string   `json:"hash"`                      // SHA256 hex digest of the cleaned text
	Platform       string   `json:"platform,omitempty"`        // Detected job board platform
	ExtractedLinks []string `json:"extracted_links,omitempty"` // Links found in the job posting
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
