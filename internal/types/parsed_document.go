// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ParsedDocument represents the structured entities extracted from a resume or
// job description. Every producer (local heuristic, remote LLM, blended)
// returns this shape with all four slices non-nil, so callers never need
// key-existence checks across the fallback chain.
type ParsedDocument struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
	Keywords   []string `json:"keywords"`
	// RawText is the source text the entities were extracted from. Omitted
	// from persisted artifacts when empty.
	RawText string `json:"raw_text,omitempty"`
}

// NewParsedDocument returns the canonical empty-entity shape. Every failure
// path in entity extraction resolves to this value.
func NewParsedDocument() *ParsedDocument {
	return &ParsedDocument{
		Skills:     []string{},
		Experience: []string{},
		Education:  []string{},
		Keywords:   []string{},
	}
}

// Normalize ensures all slices are non-nil. Useful after JSON unmarshaling,
// where missing keys decode to nil.
func (d *ParsedDocument) Normalize() {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Experience == nil {
		d.Experience = []string{}
	}
	if d.Education == nil {
		d.Education = []string{}
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
}

// IsEmpty reports whether no entities were extracted.
func (d *ParsedDocument) IsEmpty() bool {
	return len(d.Skills) == 0 && len(d.Experience) == 0 &&
		len(d.Education) == 0 && len(d.Keywords) == 0
}

// SkillsQuery returns the query text used for semantic matching: the raw
// source text when available, otherwise the joined skill list.
func (d *ParsedDocument) SkillsQuery() string {
	if d.RawText != "" {
		return d.RawText
	}
	return joinNonEmpty(d.Skills, " ")
}

func joinNonEmpty(items []string, sep string) string {
	out := ""
	for _, s := range items {
		if s == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += s
	}
	return out
}
