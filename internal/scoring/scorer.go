package scoring

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxScore is the ceiling applied to the summed rule points.
const MaxScore = 100

// AnalysisResult is the outcome of scoring one post.
type AnalysisResult struct {
	Score           int      `json:"score"`
	Highlighted     string   `json:"highlighted"`
	Recommendations []string `json:"recommendations"`
}

// RuleHit records how much a single rule contributed to a score.
type RuleHit struct {
	Rule   string `json:"rule"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

// Report is an AnalysisResult plus the per-rule breakdown that produced it.
// Points are reported before the score is clamped.
type Report struct {
	Result AnalysisResult `json:"result"`
	Hits   []RuleHit      `json:"hits"`
	Raw    int            `json:"raw_score"`
}

type compiledRule struct {
	name     string
	weight   int
	pattern  *regexp.Regexp
	advice   string
	triggers map[string]bool
}

// Scorer scores posts against a fixed rule table. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	rules     []compiledRule
	fallback  string
	openMark  string
	closeMark string
}

// New validates and compiles a rule table.
func New(table Table) (*Scorer, error) {
	if len(table.Rules) == 0 {
		return nil, &ConfigError{Message: "rule table is empty"}
	}

	s := &Scorer{
		rules:     make([]compiledRule, 0, len(table.Rules)),
		fallback:  table.Fallback,
		openMark:  table.HighlightOpen,
		closeMark: table.HighlightClose,
	}
	if s.fallback == "" {
		s.fallback = DefaultFallback
	}
	if s.openMark == "" && s.closeMark == "" {
		s.openMark, s.closeMark = defaultHighlightOpen, defaultHighlightClose
	}

	for i, rule := range table.Rules {
		compiled, err := compileRule(rule)
		if err != nil {
			return nil, &ConfigError{
				Message: fmt.Sprintf("rule %d (%s)", i, rule.Name),
				Cause:   err,
			}
		}
		s.rules = append(s.rules, compiled)
	}

	return s, nil
}

// MustNew is like New but panics on an invalid table.
func MustNew(table Table) *Scorer {
	s, err := New(table)
	if err != nil {
		panic(err)
	}
	return s
}

var defaultScorer = MustNew(DefaultTable())

// Default returns a scorer over DefaultTable.
func Default() *Scorer {
	return defaultScorer
}

// WithMarkers returns a scorer over the same rules that wraps matches in
// openMark and closeMark.
func (s *Scorer) WithMarkers(openMark, closeMark string) *Scorer {
	c := *s
	c.openMark, c.closeMark = openMark, closeMark
	return &c
}

func compileRule(rule Rule) (compiledRule, error) {
	if rule.Weight <= 0 {
		return compiledRule{}, fmt.Errorf("weight must be positive, got %d", rule.Weight)
	}

	terms := make(map[string]bool, len(rule.Terms))
	quoted := make([]string, 0, len(rule.Terms))
	for _, term := range rule.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if terms[key] {
			continue
		}
		terms[key] = true
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	if len(quoted) == 0 {
		return compiledRule{}, fmt.Errorf("no terms")
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return compiledRule{}, fmt.Errorf("compile pattern: %w", err)
	}

	compiled := compiledRule{
		name:    rule.Name,
		weight:  rule.Weight,
		pattern: pattern,
	}

	if rule.Advice != nil {
		if strings.TrimSpace(rule.Advice.Message) == "" {
			return compiledRule{}, fmt.Errorf("advice message is empty")
		}
		compiled.advice = rule.Advice.Message
		compiled.triggers = make(map[string]bool, len(rule.Advice.Triggers))
		for _, trigger := range rule.Advice.Triggers {
			key := strings.ToLower(strings.TrimSpace(trigger))
			if !terms[key] {
				return compiledRule{}, fmt.Errorf("advice trigger %q is not one of the rule's terms", trigger)
			}
			compiled.triggers[key] = true
		}
		if len(compiled.triggers) == 0 {
			return compiledRule{}, fmt.Errorf("advice has no triggers")
		}
	}

	return compiled, nil
}

// Score rates text. It never fails; empty text scores zero.
func (s *Scorer) Score(text string) AnalysisResult {
	return s.Explain(text).Result
}

// Explain scores text and reports each rule's contribution.
//
// Matches are counted in the original text. Highlighting is applied rule by rule
// to a working copy, so later rules also see markup inserted by earlier ones.
func (s *Scorer) Explain(text string) Report {
	raw := 0
	highlighted := text
	hits := make([]RuleHit, 0, len(s.rules))
	var recommendations []string

	for _, rule := range s.rules {
		matches := rule.pattern.FindAllString(text, -1)
		if len(matches) > 0 {
			points := len(matches) * rule.weight
			raw += points
			hits = append(hits, RuleHit{Rule: rule.name, Count: len(matches), Points: points})
		}

		if rule.advice != "" {
			for _, m := range matches {
				if rule.triggers[strings.ToLower(m)] {
					recommendations = append(recommendations, rule.advice)
					break
				}
			}
		}

		// Runs even when the original had no match: inserted markup may match.
		highlighted = rule.pattern.ReplaceAllStringFunc(highlighted, func(m string) string {
			return s.openMark + m + s.closeMark
		})
	}

	if len(recommendations) == 0 {
		recommendations = []string{s.fallback}
	}

	return Report{
		Result: AnalysisResult{
			Score:           min(raw, MaxScore),
			Highlighted:     highlighted,
			Recommendations: recommendations,
		},
		Hits: hits,
		Raw:  raw,
	}
}
