// Package textutil implements the small set of pure text transforms shared
// across the pipeline: cleaning raw extracted text, truncating free-text
// fields for prompt assembly, and redacting prompt-injection attempts before
// clause text is interpolated into a model prompt.
package textutil

import (
	"regexp"
	"strings"
)

var (
	zeroWidth    = regexp.MustCompile("[​‌‍﻿\x00]")
	multiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
	blankLine    = regexp.MustCompile(`(?m)^[ \t]+$`)
)

// Clean applies the document processor's single post-extraction cleaning
// pass. It is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = zeroWidth.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = blankLine.ReplaceAllString(text, "")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncateForContext caps text at max_tokens*4 characters, preferring to
// break on the last sentence period when that period falls beyond 80% of the
// cap. Returns text unchanged if already within bound.
func TruncateForContext(text string, maxTokens int) string {
	cap := maxTokens * 4
	if len(text) <= cap {
		return text
	}
	cut := text[:cap]
	lastPeriod := strings.LastIndex(cut, ".")
	if lastPeriod >= 0 && float64(lastPeriod) >= 0.8*float64(cap) {
		cut = cut[:lastPeriod+1]
	}
	return cut + "..."
}

// injectionPatterns catches the common "ignore previous instructions" family
// of prompt-injection phrasing that can appear inside attacker-controlled
// contract text.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all |any )?(previous|prior|above) instructions`),
	regexp.MustCompile(`(?i)disregard (the )?(system|previous) prompt`),
	regexp.MustCompile(`(?i)you are now (a|an) `),
	regexp.MustCompile(`(?i)act as (a|an) `),
	regexp.MustCompile(`(?i)new instructions:`),
}

// SanitizeForLLM redacts imperative override phrases from clause text before
// it is embedded in an agent prompt. This is a supplemental hardening step
// not present in the distilled pipeline spec but carried over from the
// original implementation's text utilities.
func SanitizeForLLM(text string) string {
	out := text
	for _, p := range injectionPatterns {
		out = p.ReplaceAllString(out, "[redacted]")
	}
	return out
}
