// Package courses recommends courses that close a candidate's skill gap,
// from a local CSV catalog or an external provider ranked semantically.
package courses

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/types"
)

// DefaultTopN is how many recommendations the catalog path returns.
const DefaultTopN = 5

// CatalogEntry is one row of the local course catalog.
type CatalogEntry struct {
	Title  string
	URL    string
	Skills []string
}

// LoadCatalog reads a course catalog CSV. The header row names the columns
// (title, url, skills); the skills cell is comma-separated. Rows without a
// title or skills are skipped.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []CatalogEntry{}, nil
		}
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	entries := make([]CatalogEntry, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entry := CatalogEntry{
			Title:  field(record, columns, "title"),
			URL:    field(record, columns, "url"),
			Skills: splitSkillsCell(field(record, columns, "skills")),
		}
		if entry.Title == "" || len(entry.Skills) == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RecommendLocal scores catalog entries by how many of the missing skills
// each course teaches, keeps those teaching at least one, and returns the top
// N by overlap count (ties keep catalog order). Scores are internal to the
// ordering; like the catalog itself, the recommendations carry no 0-100
// relevance score.
func RecommendLocal(entries []CatalogEntry, missingSkills []string, topN int) []types.Course {
	recommendations := make([]types.Course, 0)
	if topN <= 0 || len(entries) == 0 {
		return recommendations
	}
	missing := parsing.SkillSet(missingSkills)
	if len(missing) == 0 {
		return recommendations
	}

	type scored struct {
		course  types.Course
		overlap int
	}
	candidates := make([]scored, 0, len(entries))
	for _, entry := range entries {
		overlap := 0
		for _, skill := range parsing.NormalizeSkills(entry.Skills) {
			if missing[skill] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		candidates = append(candidates, scored{
			course:  types.Course{Title: entry.Title, URL: entry.URL},
			overlap: overlap,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	for _, c := range candidates {
		recommendations = append(recommendations, c.course)
	}
	return recommendations
}

// recommendFromCatalog loads the catalog and scores it, treating a missing or
// unreadable catalog as an empty one.
func recommendFromCatalog(path string, missingSkills []string, topN int, logger *zap.Logger) []types.Course {
	if path == "" {
		return []types.Course{}
	}
	entries, err := LoadCatalog(path)
	if err != nil {
		logger.Warn("course catalog unavailable", zap.String("path", path), zap.Error(err))
		return []types.Course{}
	}
	return RecommendLocal(entries, missingSkills, topN)
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func splitSkillsCell(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
