package docproc

import (
	"regexp"
	"strings"

	"legalrisk/internal/model"
)

var (
	definitionRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"([A-Z][A-Za-z\s]{2,60})"\s+(?:means|shall mean|refers to|is defined as)\s+([^.]{10,500}\.)`),
		regexp.MustCompile(`(?i)As used (?:herein|in this Agreement),?\s+"([A-Z][A-Za-z\s]{2,60})"\s+(?:means|shall mean)\s+([^.]{10,500}\.)`),
	}
	sectionTokenRe = regexp.MustCompile(`\d+\.\d+`)
)

// ExtractDefinitions scans the full text for defined terms, attaching the
// nearest preceding section token when present and deduplicating
// case-insensitively on term.
func ExtractDefinitions(fullText string) []model.Definition {
	seen := make(map[string]bool)
	var defs []model.Definition

	for _, re := range definitionRe {
		for _, m := range re.FindAllStringSubmatchIndex(fullText, -1) {
			term := strings.TrimSpace(fullText[m[2]:m[3]])
			definition := strings.TrimSpace(fullText[m[4]:m[5]])
			key := strings.ToLower(term)
			if seen[key] {
				continue
			}
			seen[key] = true

			section := nearestPrecedingSection(fullText[:m[0]])
			defs = append(defs, model.Definition{
				Term:       term,
				Definition: definition,
				Section:    section,
			})
		}
	}
	return defs
}

func nearestPrecedingSection(prefix string) string {
	matches := sectionTokenRe.FindAllString(prefix, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}
