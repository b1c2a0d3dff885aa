// Package paramextract is the deterministic, regex-driven structural
// feature extractor consumed by the Adversarial Analyzer (spec.md §4.3).
// It is pure: the same input string always yields the same record.
package paramextract

import (
	"regexp"
	"strconv"
	"strings"

	"legalrisk/internal/model"
)

var (
	daysRe   = regexp.MustCompile(`(?i)(\d+)\s*(business\s+)?days?`)
	monthsRe = regexp.MustCompile(`(?i)(\d+)\s*months?`)
	yearsRe  = regexp.MustCompile(`(?i)(\d+)\s*years?`)
	amountRe = regexp.MustCompile(`\$\s*[\d,]+(?:\.\d{2})?`)

	writtenNoticeRe = regexp.MustCompile(`(?i)written notice`)
	mutualRe        = regexp.MustCompile(`(?i)\b(either party|both parties)\b`)
	forCauseRe      = regexp.MustCompile(`(?i)for cause`)
	capRe           = regexp.MustCompile(`(?i)\b(limited to|shall not exceed|maximum|cap)\b`)
	cureRe          = regexp.MustCompile(`(?i)\b(cure|remedy|correct the breach)\b`)
)

// rawMarkerPatterns is the set of named lowercase substring hits recorded in
// ExtractedParameters.RawTextMarkers.
var rawMarkerPatterns = map[string]*regexp.Regexp{
	"termination":     regexp.MustCompile(`(?i)terminat`),
	"liability":       regexp.MustCompile(`(?i)liab`),
	"indemnification": regexp.MustCompile(`(?i)indemnif`),
	"non_compete":     regexp.MustCompile(`(?i)non-?compete|restraint of trade`),
	"confidential":    regexp.MustCompile(`(?i)confidential`),
	"assignment":      regexp.MustCompile(`(?i)assign`),
	"sole_discretion":  regexp.MustCompile(`(?i)sole discretion`),
	"without_cause":    regexp.MustCompile(`(?i)without cause`),
}

// Extract parses text into the fixed structural feature record.
func Extract(text string) model.ExtractedParameters {
	params := model.ExtractedParameters{
		Amounts:        amountRe.FindAllString(text, -1),
		RawTextMarkers: make(map[string]bool, len(rawMarkerPatterns)),
	}

	if m := daysRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params.Days = &n
		}
	}
	if m := monthsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params.Months = &n
		}
	}
	if m := yearsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params.Years = &n
		}
	}

	params.HasWrittenNotice = writtenNoticeRe.MatchString(text)
	params.IsMutual = mutualRe.MatchString(text)
	params.RequiresCause = forCauseRe.MatchString(text)
	params.HasCap = capRe.MatchString(text)
	params.HasCurePeriod = cureRe.MatchString(text)

	for name, re := range rawMarkerPatterns {
		params.RawTextMarkers[name] = re.MatchString(text)
	}

	return params
}

// Format renders an ExtractedParameters record as a compact human-readable
// string for interpolation into agent prompts.
func Format(p model.ExtractedParameters) string {
	var b strings.Builder
	if p.Days != nil {
		b.WriteString(strconv.Itoa(*p.Days) + " days; ")
	}
	if p.Months != nil {
		b.WriteString(strconv.Itoa(*p.Months) + " months; ")
	}
	if p.Years != nil {
		b.WriteString(strconv.Itoa(*p.Years) + " years; ")
	}
	if len(p.Amounts) > 0 {
		b.WriteString("amounts: " + strings.Join(p.Amounts, ", ") + "; ")
	}
	b.WriteString("written_notice=" + strconv.FormatBool(p.HasWrittenNotice))
	b.WriteString(" mutual=" + strconv.FormatBool(p.IsMutual))
	b.WriteString(" requires_cause=" + strconv.FormatBool(p.RequiresCause))
	b.WriteString(" has_cap=" + strconv.FormatBool(p.HasCap))
	b.WriteString(" has_cure_period=" + strconv.FormatBool(p.HasCurePeriod))
	return b.String()
}
