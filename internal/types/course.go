// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Course represents a single course candidate, either from the local catalog
// or fetched from an external provider.
type Course struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	// Score is the 0-100 relevance score assigned during ranking. Zero for
	// unranked candidates.
	Score int `json:"score,omitempty"`
}

// CourseText builds the text used when ranking a course semantically.
func (c *Course) CourseText() string {
	return c.Title + " " + c.Description
}
