// Package types provides type definitions for structured data used throughout the resume-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MatchResult represents the outcome of scoring one candidate against one
// target (resume vs job, or skills vs course).
type MatchResult struct {
	// Score is the composite match score, an integer percentage.
	Score int `json:"score"`
	// Feedback is a one-line human-readable summary of the match.
	Feedback string `json:"feedback"`
	// Coverage is the fraction of target skills present in the candidate's
	// skill set, in [0,1].
	Coverage float64 `json:"coverage"`
	// Semantic is the embedding (or fallback) similarity in [0,1].
	Semantic float64 `json:"semantic"`
	// RemoteScored is true when a remote generative-text score was blended in.
	RemoteScored bool `json:"remote_scored,omitempty"`
}

// RankedItem is a single entry in a similarity ranking. Ordering is by
// descending Score; ties preserve input order.
type RankedItem struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// JobMatch pairs a job with its match result for ranked output.
type JobMatch struct {
	JobID    string `json:"job_id"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	ApplyURL string `json:"apply_url,omitempty"`
}

// ApplicantMatch pairs an applicant with their match result when screening
// many resumes against one job.
type ApplicantMatch struct {
	ApplicantID string `json:"applicant_id"`
	ResumePath  string `json:"resume_path,omitempty"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
}
