package docproc

import (
	"regexp"
	"strings"

	"legalrisk/internal/model"
)

const headerRegionLen = 2000
const contractTypeRegionLen = 3000

var (
	partyRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)between\s+([A-Z][A-Za-z0-9,.&\s]{3,100}?)\s+and\s+([A-Z][A-Za-z0-9,.&\s]{3,100}?)[,.\n]`),
		regexp.MustCompile(`(?i)by and between\s+([A-Z][A-Za-z0-9,.&\s]{3,100}?)\s+and\s+([A-Z][A-Za-z0-9,.&\s]{3,100}?)[,.\n]`),
	}

	effectiveDateRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)effective\s+date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
		regexp.MustCompile(`(?i)as of\s+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
		regexp.MustCompile(`(?i)dated\s+(this\s+)?(\d{1,2}(?:st|nd|rd|th)?\s+day\s+of\s+[A-Za-z]+,?\s+\d{4})`),
	}

	amountRe = regexp.MustCompile(`\$\s?[\d,]+(?:\.\d{2})?(?:\s?(?:million|thousand|billion))?`)

	contractTypeKeywords = map[string][]string{
		"NDA":                       {"non-disclosure", "nondisclosure", "confidentiality agreement"},
		"Service Agreement":         {"services agreement", "service agreement", "services to be provided"},
		"Employment Contract":       {"employment agreement", "employee", "employer", "at-will"},
		"Master Service Agreement":  {"master service agreement", "master services agreement", "msa"},
		"Purchase Agreement":        {"purchase agreement", "purchaser", "sale of goods"},
		"General Contract":          {},
	}
)

// ExtractMetadata enriches DocumentMetadata from the cleaned full text,
// per spec.md §4.1.
func ExtractMetadata(fullText string, meta *model.DocumentMetadata) {
	header := fullText
	if len(header) > headerRegionLen {
		header = header[:headerRegionLen]
	}

	for _, re := range partyRe {
		if m := re.FindStringSubmatch(header); m != nil {
			var parties []string
			for _, p := range m[1:] {
				p = strings.TrimSpace(p)
				if len(p) > 3 && len(p) < 100 {
					parties = append(parties, p)
				}
				if len(parties) == 2 {
					break
				}
			}
			if len(parties) > 0 {
				meta.Parties = parties
				break
			}
		}
	}

	for _, re := range effectiveDateRe {
		if m := re.FindStringSubmatch(header); m != nil {
			meta.EffectiveDate = strings.TrimSpace(m[len(m)-1])
			break
		}
	}

	amounts := amountRe.FindAllString(fullText, -1)
	if len(amounts) > 5 {
		amounts = amounts[:5]
	}
	meta.MentionedAmounts = amounts

	region := fullText
	if len(region) > contractTypeRegionLen {
		region = region[:contractTypeRegionLen]
	}
	meta.ContractType = inferContractType(region)
}

// inferContractType returns the first contract type, in priority order,
// with any keyword present in text; hits are not counted. Falls back to
// "General Contract".
func inferContractType(text string) string {
	lower := strings.ToLower(text)
	order := []string{"NDA", "Master Service Agreement", "Service Agreement", "Employment Contract", "Purchase Agreement"}
	for _, contractType := range order {
		for _, kw := range contractTypeKeywords[contractType] {
			if strings.Contains(lower, kw) {
				return contractType
			}
		}
	}
	return "General Contract"
}
