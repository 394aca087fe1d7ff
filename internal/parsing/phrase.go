package parsing

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// phraseTriggers introduce a skill mention in running prose:
// "experience with Kubernetes and Terraform", "proficient in Go".
var phraseTriggers = []string{
	"experience with",
	"experience in",
	"proficient in",
	"proficiency in",
	"knowledge of",
	"familiar with",
	"familiarity with",
	"expertise in",
	"skilled in",
	"background in",
	"working with",
}

const (
	maxPhraseTokens  = 4
	maxTriggerTokens = 6
)

// phraseSkills mines additional skill candidates from prose text: noun
// phrases tagged by the POS tagger plus tokens trailing trigger phrases.
// Candidates must resolve against the vocabulary to count. Tagger errors
// are swallowed; this pass only ever adds.
func phraseSkills(text string, vocab *Vocabulary) []string {
	var out []string
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err == nil {
		out = append(out, nounPhraseSkills(doc.Tokens(), vocab)...)
	}
	out = append(out, triggerSkills(text, vocab)...)
	return out
}

// nounPhraseSkills collects runs of adjective/noun tokens (up to
// maxPhraseTokens long) and keeps the runs, and their individual words,
// that the vocabulary knows.
func nounPhraseSkills(tokens []prose.Token, vocab *Vocabulary) []string {
	var out []string
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) <= maxPhraseTokens {
			if c := vocabResolve(strings.Join(run, " "), vocab); c != "" {
				out = append(out, c)
			}
		}
		for _, w := range run {
			if c := vocabResolve(w, vocab); c != "" {
				out = append(out, c)
			}
		}
		run = run[:0]
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			run = append(run, tok.Text)
			continue
		}
		flush()
	}
	flush()
	return out
}

// triggerSkills scans for trigger phrases and resolves the few tokens that
// follow each one, stopping at sentence punctuation.
func triggerSkills(text string, vocab *Vocabulary) []string {
	var out []string
	lower := strings.ToLower(text)
	for _, trigger := range phraseTriggers {
		from := 0
		for {
			i := strings.Index(lower[from:], trigger)
			if i < 0 {
				break
			}
			start := from + i + len(trigger)
			out = append(out, trailingSkills(lower[start:], vocab)...)
			from = start
		}
	}
	return out
}

// trailingSkills resolves up to maxTriggerTokens words from the start of
// tail, cut at the first sentence-ending punctuation.
func trailingSkills(tail string, vocab *Vocabulary) []string {
	if i := strings.IndexAny(tail, ".;:\n"); i >= 0 {
		tail = tail[:i]
	}
	fields := strings.FieldsFunc(tail, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '(' || r == ')'
	})
	if len(fields) > maxTriggerTokens {
		fields = fields[:maxTriggerTokens]
	}
	var out []string
	for _, f := range fields {
		if f == "and" || f == "or" {
			continue
		}
		if c := vocabResolve(f, vocab); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// vocabResolve canonicalizes token and returns it only when the vocabulary
// recognizes it, exactly or fuzzily.
func vocabResolve(token string, vocab *Vocabulary) string {
	c := Canonicalize(token)
	if c == "" {
		return ""
	}
	if vocab.Contains(c) {
		return c
	}
	if near, ok := vocab.Nearest(c); ok {
		return near
	}
	return ""
}
