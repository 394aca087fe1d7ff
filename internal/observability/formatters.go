// Package observability provides logging construction and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintParsedDocument outputs a human-readable summary of extracted entities.
func (p *Printer) PrintParsedDocument(label string, doc *types.ParsedDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder

	writeList := func(name string, items []string, limit int) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(name + ":\n")
		count := min(len(items), limit)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > limit {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
		}
		sb.WriteString("\n")
	}

	writeList("Skills", doc.Skills, maxItemsToShow)
	writeList("Experience", doc.Experience, 3)
	writeList("Education", doc.Education, 3)
	if len(doc.Keywords) > 0 {
		keywords := strings.Join(doc.Keywords, ", ")
		if len(keywords) > 50 {
			keywords = keywords[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", keywords))
	}

	p.printBox(strings.ToUpper(label), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobMatches outputs the top ranked job matches with scores and feedback.
func (p *Printer) PrintJobMatches(matches []types.JobMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total jobs matched: %d\n\n", len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.Title))
		sb.WriteString(fmt.Sprintf("    Score: %d\n", m.Score))
		feedback := m.Feedback
		if len(feedback) > 44 {
			feedback = feedback[:41] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", feedback))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more jobs", len(matches)-maxItemsToShow))
	}

	p.printBox("RANKED JOB MATCHES", sb.String())
}

// PrintCourses outputs recommended courses with scores when present.
func (p *Printer) PrintCourses(courses []types.Course) {
	if len(courses) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(courses), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := courses[i]
		title := c.Title
		if len(title) > 42 {
			title = title[:39] + "..."
		}
		if c.Score > 0 {
			sb.WriteString(fmt.Sprintf("• %s (%d)\n", title, c.Score))
		} else {
			sb.WriteString(fmt.Sprintf("• %s\n", title))
		}
	}

	if len(courses) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more courses", len(courses)-maxItemsToShow))
	}

	p.printBox("COURSE RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkillGap outputs the missing skills for a target job.
func (p *Printer) PrintSkillGap(missing []string) {
	var sb strings.Builder
	if len(missing) == 0 {
		sb.WriteString("No missing skills detected.")
	} else {
		count := min(len(missing), 10)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("• %s\n", missing[i]))
		}
		if len(missing) > 10 {
			sb.WriteString(fmt.Sprintf("... and %d more", len(missing)-10))
		}
	}

	p.printBox("SKILL GAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintApplicants outputs screened applicants sorted by score.
func (p *Printer) PrintApplicants(rows []types.ApplicantMatch) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := rows[i]
		sb.WriteString(fmt.Sprintf("#%d  %s — %d\n", i+1, r.ApplicantID, r.Score))
	}
	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more applicants", len(rows)-maxItemsToShow))
	}

	p.printBox("SCREENED APPLICANTS", strings.TrimSuffix(sb.String(), "\n"))
}
