package parsing

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-matcher/internal/types"
)

// maxLocalKeywords bounds how many frequent tokens the local extractor
// reports as keywords.
const maxLocalKeywords = 30

// maxSkillTokenLen rejects section fragments too long to be a skill name
// (usually a prose sentence that leaked into a skills section).
const maxSkillTokenLen = 40

type sectionKind int

const (
	sectionOther sectionKind = iota
	sectionSkills
	sectionExperience
	sectionEducation
)

// headingPatterns drive naive sectioning. Ordered longest-first so
// "technical skills" wins over "skills". A heading is one of these at the
// start of a line (bullet and markdown markers stripped), followed by
// nothing or a colon.
var headingPatterns = []struct {
	name string
	kind sectionKind
}{
	{"professional experience", sectionExperience},
	{"technical proficiencies", sectionSkills},
	{"academic background", sectionEducation},
	{"employment history", sectionExperience},
	{"core competencies", sectionSkills},
	{"technical skills", sectionSkills},
	{"work experience", sectionExperience},
	{"qualifications", sectionSkills},
	{"certifications", sectionEducation},
	{"work history", sectionExperience},
	{"competencies", sectionSkills},
	{"requirements", sectionSkills},
	{"technologies", sectionSkills},
	{"tech stack", sectionSkills},
	{"experience", sectionExperience},
	{"education", sectionEducation},
	{"skills", sectionSkills},
}

var (
	educationRe  = regexp.MustCompile(`(?i)\b(bachelor'?s?|master'?s?|doctorate|doctoral|ph\.?d|m\.?b\.?a|b\.?sc|m\.?sc|b\.?tech|m\.?tech|b\.s\.|m\.s\.|b\.a\.)`)
	experienceRe = regexp.MustCompile(`(?i)\b\d+\s*\+?\s*(years?|yrs?)\b`)
	skillSepRe   = regexp.MustCompile(`[,;/|•·]+`)
)

// LocalExtractor extracts entities offline with a vocabulary-driven
// heuristic. It is the perpetual fallback: it cannot fail, only return
// sparser results than the remote extractor.
type LocalExtractor struct {
	vocab      *Vocabulary
	usePhrases bool
}

// NewLocalExtractor builds a local extractor over the given vocabulary,
// defaulting to the process vocabulary when vocab is nil.
func NewLocalExtractor(vocab *Vocabulary) *LocalExtractor {
	if vocab == nil {
		vocab = ProcessVocabulary()
	}
	return &LocalExtractor{vocab: vocab, usePhrases: true}
}

// Extract parses text into entities. The returned error is always nil; the
// signature matches the Extractor interface shared with the remote path.
func (e *LocalExtractor) Extract(_ context.Context, text string, _ DocKind) (*types.ParsedDocument, error) {
	doc := types.NewParsedDocument()
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	doc.RawText = text

	// Explicitly listed skills from skill-labeled sections come first,
	// then vocabulary mentions anywhere in the text, then best-effort
	// phrase candidates. NormalizeSkills dedupes across the three.
	var skills []string
	for _, tok := range sectionSkillTokens(text) {
		skills = append(skills, e.resolveToken(tok))
	}
	skills = append(skills, e.vocab.ScanText(text)...)
	if e.usePhrases {
		skills = append(skills, phraseSkills(text, e.vocab)...)
	}
	doc.Skills = NormalizeSkills(skills)

	doc.Experience = matchingLines(text, experienceRe)
	doc.Education = matchingLines(text, educationRe)
	doc.Keywords = frequentKeywords(text, maxLocalKeywords)
	return doc, nil
}

// resolveToken canonicalizes a section token, normalizing near-spellings
// onto the vocabulary when they clear the fuzzy cutoff.
func (e *LocalExtractor) resolveToken(token string) string {
	c := Canonicalize(token)
	if c == "" || e.vocab.Contains(c) {
		return c
	}
	if near, ok := e.vocab.Nearest(c); ok {
		return near
	}
	return c
}

type section struct {
	kind  sectionKind
	lines []string
}

// splitSections divides text into heading-delimited sections. Text before
// the first heading lands in a sectionOther block.
func splitSections(text string) []section {
	current := section{kind: sectionOther}
	var sections []section
	for _, line := range strings.Split(text, "\n") {
		if kind, rest, ok := matchHeading(line); ok {
			sections = append(sections, current)
			current = section{kind: kind}
			if rest != "" {
				current.lines = append(current.lines, rest)
			}
			continue
		}
		current.lines = append(current.lines, line)
	}
	return append(sections, current)
}

// matchHeading reports whether line is a section heading and returns any
// same-line content after the colon ("Skills: Python, SQL").
func matchHeading(line string) (sectionKind, string, bool) {
	clean := strings.TrimSpace(line)
	clean = strings.TrimLeft(clean, "#-*•· \t")
	lower := strings.ToLower(clean)
	for _, h := range headingPatterns {
		if !strings.HasPrefix(lower, h.name) {
			continue
		}
		rest := strings.TrimSpace(clean[len(h.name):])
		if rest == "" {
			return h.kind, "", true
		}
		if strings.HasPrefix(rest, ":") {
			return h.kind, strings.TrimSpace(rest[1:]), true
		}
		// A prose line that merely starts with a heading word
		// ("experience with Go...") is not a heading.
	}
	return sectionOther, "", false
}

// sectionSkillTokens collects candidate skill tokens from skill-labeled
// sections, split on commas, slashes, bullets and newlines.
func sectionSkillTokens(text string) []string {
	var tokens []string
	for _, sec := range splitSections(text) {
		if sec.kind != sectionSkills {
			continue
		}
		for _, line := range sec.lines {
			line = strings.TrimSpace(line)
			line = strings.TrimLeft(line, "-*•· \t")
			for _, part := range skillSepRe.Split(line, -1) {
				part = strings.TrimSpace(part)
				// Parenthetical qualifiers ("Go (5+ years)") are not
				// part of the skill name.
				if i := strings.IndexByte(part, '('); i >= 0 {
					part = strings.TrimSpace(part[:i])
				}
				if part == "" || len(part) > maxSkillTokenLen {
					continue
				}
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// matchingLines returns trimmed, deduplicated lines of text that match re,
// in document order.
func matchingLines(text string, re *regexp.Regexp) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] || !re.MatchString(line) {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// keywordStopwords filters common words that add noise to frequency-based
// keyword extraction.
var keywordStopwords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"years": true, "year": true, "yrs": true, "strong": true,
	"experience": true, "experienced": true, "skills": true, "skill": true,
	"ability": true, "including": true, "etc": true, "plus": true,
	"working": true, "knowledge": true, "required": true, "preferred": true,
}

// frequentKeywords returns up to limit distinct tokens ordered by
// descending frequency, ties broken by first appearance. Tokens keep tech
// suffixes ('+', '#', '.') so "c++" and "node.js" survive tokenization.
func frequentKeywords(text string, limit int) []string {
	counts := make(map[string]int)
	var order []string

	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) < 3 || keywordStopwords[w] {
			return
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
