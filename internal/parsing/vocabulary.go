package parsing

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// fuzzyCutoff is the minimum bigram similarity for mapping a near-spelling
// onto a vocabulary entry.
const fuzzyCutoff = 0.88

// curatedSkills seeds the vocabulary. Multi-word phrases are scanned before
// their constituent words, so "machine learning engineer" never double-counts
// "machine learning".
var curatedSkills = []string{
	// Languages
	"python", "java", "javascript", "typescript", "go", "rust", "c++", "c#",
	"ruby", "php", "kotlin", "swift", "scala", "perl", "r programming",
	"matlab", "bash", "sql", "html", "css", "sass",
	// Frameworks and runtimes
	"django", "flask", "fastapi", "spring boot", "spring", "rails",
	"react", "angular", "vue", "next.js", "svelte", "node.js", "express",
	"laravel", ".net", "asp.net", "gin", "echo framework",
	// Data and ML
	"machine learning", "deep learning", "natural language processing",
	"computer vision", "data science", "data analysis", "data engineering",
	"data visualization", "feature engineering", "statistics",
	"tensorflow", "pytorch", "keras", "scikit-learn", "pandas", "numpy",
	"matplotlib", "spark", "hadoop", "airflow", "dbt", "etl",
	"large language models", "prompt engineering", "recommendation systems",
	// Databases and storage
	"postgresql", "mysql", "sqlite", "mongodb", "redis", "elasticsearch",
	"cassandra", "dynamodb", "oracle", "sql server", "snowflake", "bigquery",
	// Cloud and infrastructure
	"aws", "azure", "google cloud", "docker", "kubernetes", "terraform",
	"ansible", "jenkins", "ci/cd", "github actions", "gitlab", "git",
	"linux", "nginx", "serverless", "lambda", "ec2", "s3",
	// Messaging and APIs
	"kafka", "rabbitmq", "grpc", "graphql", "rest api", "websockets",
	"microservices", "distributed systems", "event-driven architecture",
	// Practices
	"agile", "scrum", "test-driven development", "unit testing",
	"integration testing", "code review", "system design",
	"object-oriented programming", "functional programming",
	"performance tuning", "observability", "monitoring", "security",
	// Communication-adjacent
	"project management", "technical writing", "mentoring",
	"stakeholder management", "problem solving", "communication",
	"leadership", "teamwork",
}

// Vocabulary is the set of known canonical skills used for substring
// scanning and fuzzy normalization. Read-only after construction.
type Vocabulary struct {
	set     map[string]bool // canonical entries
	entries []string        // canonical entries, longest first
	scanSet []string        // canonical entries plus alias spellings, longest first
}

// NewVocabulary builds a vocabulary from the curated list plus any extra
// skills (typically harvested from configured job records). Input tokens are
// canonicalized and deduplicated.
func NewVocabulary(extra ...string) *Vocabulary {
	all := make([]string, 0, len(curatedSkills)+len(extra))
	all = append(all, curatedSkills...)
	all = append(all, extra...)
	canonical := NormalizeSkills(all)

	set := make(map[string]bool, len(canonical))
	for _, c := range canonical {
		set[c] = true
	}

	entries := make([]string, len(canonical))
	copy(entries, canonical)
	longestFirst(entries)

	// Scanning also looks for alias spellings ("golang", "nodejs") that
	// canonicalization would otherwise hide from the substring pass.
	scan := make([]string, 0, len(canonical)+len(skillAliases))
	scan = append(scan, canonical...)
	for alias, target := range skillAliases {
		if set[target] {
			scan = append(scan, alias)
		}
	}
	scan = NormalizeSkillsKeepAliases(scan)
	longestFirst(scan)

	return &Vocabulary{set: set, entries: entries, scanSet: scan}
}

// NormalizeSkillsKeepAliases lowercases, trims and deduplicates without
// resolving aliases, so variant spellings survive for scanning.
func NormalizeSkillsKeepAliases(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		t := tokenSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(tok)), " ")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func longestFirst(entries []string) {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i]) > len(entries[j])
	})
}

// Contains reports whether the canonical form of token is a known skill.
func (v *Vocabulary) Contains(token string) bool {
	return v.set[Canonicalize(token)]
}

// Len returns the number of canonical entries.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// ScanText finds vocabulary skills mentioned anywhere in text. Entries are
// tried longest first and every matched span is blanked from the scan
// buffer, so phrases claim their words before shorter entries can.
// Matches must sit on token boundaries ("go" never matches inside
// "google"). Returned tokens are canonical and deduplicated.
func (v *Vocabulary) ScanText(text string) []string {
	buffer := []byte(strings.ToLower(text))
	var found []string
	for _, entry := range v.scanSet {
		if !blankMatches(buffer, entry) {
			continue
		}
		found = append(found, Canonicalize(entry))
	}
	return NormalizeSkills(found)
}

// blankMatches overwrites every boundary-aligned occurrence of entry in
// buffer with spaces, reporting whether at least one occurrence was found.
func blankMatches(buffer []byte, entry string) bool {
	needle := []byte(entry)
	matched := false
	from := 0
	for {
		i := bytes.Index(buffer[from:], needle)
		if i < 0 {
			return matched
		}
		i += from
		end := i + len(needle)
		if boundary(buffer, i-1) && boundary(buffer, end) {
			matched = true
			for j := i; j < end; j++ {
				buffer[j] = ' '
			}
		}
		from = i + 1
	}
}

// boundary reports whether position idx in buffer is outside any token.
// '+', '#' and '.' bind to tokens mid-word (c++, c#, node.js), but a '.'
// at a token edge is sentence punctuation.
func boundary(buffer []byte, idx int) bool {
	if idx < 0 || idx >= len(buffer) {
		return true
	}
	c := buffer[idx]
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return false
	case c == '+' || c == '#':
		return false
	default:
		return true
	}
}

// Nearest maps token onto its most similar vocabulary entry when the
// similarity clears fuzzyCutoff. The metric is bigram Sorensen-Dice, the
// closest ecosystem analog of difflib-style sequence ratio.
func (v *Vocabulary) Nearest(token string) (string, bool) {
	c := Canonicalize(token)
	if c == "" {
		return "", false
	}
	if v.set[c] {
		return c, true
	}

	metric := metrics.NewSorensenDice()
	best := ""
	bestScore := 0.0
	for _, entry := range v.entries {
		if score := strutil.Similarity(c, entry, metric); score > bestScore {
			best, bestScore = entry, score
		}
	}
	if bestScore >= fuzzyCutoff {
		return best, true
	}
	return "", false
}

var (
	vocabMu      sync.Mutex
	processVocab *Vocabulary
)

// ProcessVocabulary returns the process-wide vocabulary, building it on
// first use from the curated list plus extra. The first caller's extra
// skills win; later calls get the cached vocabulary unchanged.
func ProcessVocabulary(extra ...string) *Vocabulary {
	vocabMu.Lock()
	defer vocabMu.Unlock()
	if processVocab == nil {
		processVocab = NewVocabulary(extra...)
	}
	return processVocab
}

// ResetProcessVocabulary discards the cached process vocabulary so the next
// ProcessVocabulary call rebuilds it. Intended for tests.
func ResetProcessVocabulary() {
	vocabMu.Lock()
	defer vocabMu.Unlock()
	processVocab = nil
}
