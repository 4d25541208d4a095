package rewriting

import (
	"regexp"
	"sort"
	"strings"
)

// Cringe categories shown as the highlight title.
const (
	CategoryJargon     = "Corporate jargon/buzzword"
	CategoryHumbleBrag = "Humble-brag"
	CategoryFormal     = "Overly formal tone"
	CategoryBegging    = "Begging for engagement"
	CategoryDefault    = "Cringe element"
)

var categoryPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{CategoryJargon, regexp.MustCompile(`(?i)synerg|leverag|thought leader|game.?changer|disrupt|innovat`)},
	{CategoryHumbleBrag, regexp.MustCompile(`(?i)humbled|honored|proud|thrilled to|excited to announce`)},
	{CategoryFormal, regexp.MustCompile(`(?i)it is with great|pleased to inform|I am writing to`)},
	{CategoryBegging, regexp.MustCompile(`(?i)please like|please share|don't ignore|any support|would mean the world`)},
}

// CategorizeFactor returns the first matching cringe category for a phrase.
func CategorizeFactor(factor string) string {
	for _, c := range categoryPatterns {
		if c.pattern.MatchString(factor) {
			return c.category
		}
	}
	return CategoryDefault
}

// HighlightCringeFactors wraps each LLM-reported phrase found in post with a
// titled span. Longer phrases are applied first so they win over their own
// substrings.
func HighlightCringeFactors(post string, factors []string) string {
	if len(factors) == 0 {
		return post
	}

	sorted := make([]string, 0, len(factors))
	for _, f := range factors {
		if f = strings.TrimSpace(f); f != "" {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	highlighted := post
	for _, factor := range sorted {
		re, err := regexp.Compile(`(?i)(^|\b|\s)(` + regexp.QuoteMeta(factor) + `)(\b|\s|$|[,.!?:;])`)
		if err != nil {
			continue
		}
		replacement := `${1}<span class="cringe" title="` + CategorizeFactor(factor) + `">${2}</span>${3}`
		highlighted = re.ReplaceAllString(highlighted, replacement)
	}
	return highlighted
}
