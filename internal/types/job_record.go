// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobRecord represents one job posting as supplied by the caller (CSV row,
// stored record, or fresh parse). SkillsCSV carries the comma-separated
// required-skill list exactly as stored.
type JobRecord struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	SkillsCSV   string `json:"skills"`
	Deadline    string `json:"deadline,omitempty"`
	ApplyURL    string `json:"apply_url,omitempty"`
}

// Validate validates the JobRecord using the validator.
func (j *JobRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// Skills splits SkillsCSV into trimmed, non-empty entries. Case is preserved;
// normalization is the scorer's concern.
func (j *JobRecord) Skills() []string {
	if strings.TrimSpace(j.SkillsCSV) == "" {
		return []string{}
	}
	parts := strings.Split(j.SkillsCSV, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Text builds the free-text representation used for semantic matching:
// title, description and skill list joined with spaces.
func (j *JobRecord) Text() string {
	return j.Title + " " + j.Description + " " + j.SkillsCSV
}
