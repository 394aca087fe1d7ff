package parsing

import (
	"regexp"
	"strings"
)

// skillAliases maps common variant spellings to the canonical token.
// Canonical forms are lowercase and must be fixed points of Canonicalize:
// looking up an alias value never resolves further.
var skillAliases = map[string]string{
	"golang":                "go",
	"go lang":               "go",
	"js":                    "javascript",
	"java script":           "javascript",
	"ts":                    "typescript",
	"node":                  "node.js",
	"nodejs":                "node.js",
	"react.js":              "react",
	"reactjs":               "react",
	"vue.js":                "vue",
	"vuejs":                 "vue",
	"k8s":                   "kubernetes",
	"postgres":              "postgresql",
	"mongo":                 "mongodb",
	"py":                    "python",
	"cpp":                   "c++",
	"c plus plus":           "c++",
	"csharp":                "c#",
	"c sharp":               "c#",
	"ml":                    "machine learning",
	"nlp":                   "natural language processing",
	"tf":                    "tensorflow",
	"sklearn":               "scikit-learn",
	"scikit learn":          "scikit-learn",
	"amazon web services":   "aws",
	"google cloud platform": "google cloud",
	"gcp":                   "google cloud",
	"ci cd":                 "ci/cd",
	"cicd":                  "ci/cd",
	"rest apis":             "rest api",
	"restful":               "rest api",
}

var tokenSpaceRe = regexp.MustCompile(`\s+`)

// Canonicalize maps a raw skill token to its canonical form: lowercased,
// whitespace collapsed to single spaces, alias-resolved. Blank input
// canonicalizes to the empty string. Canonical tokens are fixed points:
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return ""
	}
	t = tokenSpaceRe.ReplaceAllString(t, " ")
	if canonical, ok := skillAliases[t]; ok {
		return canonical
	}
	return t
}

// NormalizeSkills canonicalizes every token and deduplicates the result,
// preserving first-seen order. Tokens that canonicalize to the empty string
// are dropped, so the output satisfies the skill-set invariants: no empty
// strings, no duplicates.
func NormalizeSkills(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		c := Canonicalize(tok)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SkillSet builds a membership set of canonical tokens for coverage math.
func SkillSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if c := Canonicalize(tok); c != "" {
			set[c] = true
		}
	}
	return set
}
