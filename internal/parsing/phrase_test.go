package parsing

import (
	"testing"

	prose "github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
)

func TestPhraseSkills_TriggerPhrases(t *testing.T) {
	v := NewVocabulary()
	found := phraseSkills("We want experience with Kubernetes and Terraform. Proficient in Go.", v)

	assert.Contains(t, found, "kubernetes")
	assert.Contains(t, found, "terraform")
	assert.Contains(t, found, "go")
}

func TestPhraseSkills_UnknownTermsIgnored(t *testing.T) {
	v := NewVocabulary()
	found := phraseSkills("Deep experience with juggling and mime.", v)

	assert.NotContains(t, found, "juggling")
	assert.NotContains(t, found, "mime")
}

func TestNounPhraseSkills(t *testing.T) {
	v := NewVocabulary()
	tokens := []prose.Token{
		{Text: "machine", Tag: "NN"},
		{Text: "learning", Tag: "NN"},
		{Text: "rocks", Tag: "VBZ"},
		{Text: "Docker", Tag: "NNP"},
		{Text: ".", Tag: "."},
	}

	found := nounPhraseSkills(tokens, v)

	assert.Contains(t, found, "machine learning", "adjacent noun tokens form a phrase")
	assert.Contains(t, found, "docker")
	assert.NotContains(t, found, "rocks")
}

func TestNounPhraseSkills_LongRunsResolveWords(t *testing.T) {
	v := NewVocabulary()
	tokens := []prose.Token{
		{Text: "big", Tag: "JJ"},
		{Text: "scalable", Tag: "JJ"},
		{Text: "modern", Tag: "JJ"},
		{Text: "python", Tag: "NN"},
		{Text: "platform", Tag: "NN"},
	}

	found := nounPhraseSkills(tokens, v)

	assert.Contains(t, found, "python", "known words inside long runs still count")
	assert.NotContains(t, found, "big scalable modern python platform")
}

func TestTrailingSkills(t *testing.T) {
	v := NewVocabulary()

	got := trailingSkills(" go and python. docker after the period", v)
	assert.Equal(t, []string{"go", "python"}, got)

	got = trailingSkills(" one two three four five six kubernetes", v)
	assert.Empty(t, got, "the token window is bounded")
}

func TestPhraseSkills_EmptyText(t *testing.T) {
	assert.Empty(t, phraseSkills("", NewVocabulary()))
}
