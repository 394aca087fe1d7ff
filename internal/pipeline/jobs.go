package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// jobColumns are the header names LoadJobs recognizes, lowercased. hr_id
// appears in legacy exports; it marks a header row but is not carried on
// the record.
var jobColumns = []string{"title", "description", "skills", "deadline", "apply_url", "hr_id"}

// LoadJobs reads a jobs CSV file into job records. Two layouts are
// accepted: a headered file with any of the known columns in any order, or
// a headerless file whose rows are recovered by position. Rows without a
// title and fully blank rows are skipped; record IDs are the zero-based
// positions of the kept rows.
func LoadJobs(path string) ([]types.JobRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []types.JobRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	columns := headerColumns(first)

	jobs := make([]types.JobRecord, 0)
	appendRow := func(row []string) {
		var rec types.JobRecord
		var ok bool
		if columns != nil {
			rec, ok = recordFromHeader(row, columns)
		} else {
			rec, ok = recordFromPosition(row)
		}
		if !ok {
			return
		}
		rec.ID = strconv.Itoa(len(jobs))
		jobs = append(jobs, rec)
	}

	// Without a recognized header the first row is data.
	if columns == nil {
		appendRow(first)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read jobs file: %w", err)
		}
		appendRow(row)
	}

	return jobs, nil
}

// headerColumns maps recognized column names to their positions. A nil map
// means the row is not a header.
func headerColumns(row []string) map[string]int {
	columns := make(map[string]int)
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, known := range jobColumns {
			if name == known {
				columns[name] = i
				break
			}
		}
	}
	if len(columns) == 0 {
		return nil
	}
	return columns
}

// recordFromHeader extracts a record through the header map. Columns the
// header lacks, and cells a short row lacks, read as empty.
func recordFromHeader(row []string, columns map[string]int) (types.JobRecord, bool) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := types.JobRecord{
		Title:       cell("title"),
		Description: cell("description"),
		SkillsCSV:   cell("skills"),
		Deadline:    cell("deadline"),
		ApplyURL:    cell("apply_url"),
	}
	if rec.Title == "" {
		return types.JobRecord{}, false
	}
	return rec, true
}

// recordFromPosition recovers a headerless row by length. An unquoted comma
// inside the description splits it across cells, so the trailing fields are
// anchored from the right and the middle cells are glued back together:
//
//	6+ cols: title, description..., skills, deadline, apply_url, hr_id
//	5 cols:  title, description, skills, deadline, apply_url
//	4 cols:  title, description, skills, deadline
func recordFromPosition(row []string) (types.JobRecord, bool) {
	n := len(row)
	if n < 4 {
		return types.JobRecord{}, false
	}

	rec := types.JobRecord{Title: strings.TrimSpace(row[0])}
	switch {
	case n >= 6:
		rec.ApplyURL = strings.TrimSpace(row[n-2])
		rec.Deadline = strings.TrimSpace(row[n-3])
		rec.SkillsCSV = strings.TrimSpace(row[n-4])
		rec.Description = glueCells(row[1 : n-4])
	case n == 5:
		rec.ApplyURL = strings.TrimSpace(row[4])
		rec.Deadline = strings.TrimSpace(row[3])
		rec.SkillsCSV = strings.TrimSpace(row[2])
		rec.Description = strings.TrimSpace(row[1])
	default:
		rec.Deadline = strings.TrimSpace(row[3])
		rec.SkillsCSV = strings.TrimSpace(row[2])
		rec.Description = strings.TrimSpace(row[1])
	}
	if rec.Title == "" {
		return types.JobRecord{}, false
	}
	return rec, true
}

// glueCells rejoins description cells that an unquoted comma split apart.
func glueCells(cells []string) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, strings.TrimSpace(c))
	}
	return strings.Join(parts, ",")
}
