package parsing

import "github.com/jonathan/resume-matcher/internal/types"

// Caps applied when blending. The remote extractor occasionally returns
// sprawling lists for prose-heavy documents; blended output stays bounded.
const (
	maxExperienceItems = 30
	maxEducationItems  = 20
	maxKeywordItems    = 50
)

// BlendDocuments merges a local and a remote extraction of the same text.
// Skills are unioned (local first, so heuristic hits keep their rank);
// the narrative fields prefer the remote result and fall back to local
// when the remote list is empty.
func BlendDocuments(local, remote *types.ParsedDocument) *types.ParsedDocument {
	if local == nil {
		local = types.NewParsedDocument()
	}
	if remote == nil {
		remote = types.NewParsedDocument()
	}

	doc := types.NewParsedDocument()
	doc.Skills = NormalizeSkills(append(append([]string{}, local.Skills...), remote.Skills...))
	doc.Experience = capList(preferNonEmpty(remote.Experience, local.Experience), maxExperienceItems)
	doc.Education = capList(preferNonEmpty(remote.Education, local.Education), maxEducationItems)
	doc.Keywords = capList(preferNonEmpty(remote.Keywords, local.Keywords), maxKeywordItems)

	doc.RawText = local.RawText
	if doc.RawText == "" {
		doc.RawText = remote.RawText
	}
	return doc
}

func preferNonEmpty(primary, fallback []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}

func capList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	out = append(out, items...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
