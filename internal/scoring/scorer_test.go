package scoring

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buzzwordAdvice = "Replace corporate buzzwords with simpler alternatives"
	clicheAdvice   = "Avoid cliché corporate phrases"
	fillerAdvice   = "Remove unnecessary filler phrases"
)

func mark(s string) string {
	return defaultHighlightOpen + s + defaultHighlightClose
}

func TestScore_EmptyText(t *testing.T) {
	result := Default().Score("")

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "", result.Highlighted)
	assert.Equal(t, []string{DefaultFallback}, result.Recommendations)
}

func TestScore_BuzzwordExample(t *testing.T) {
	result := Default().Score("We need to leverage synergy to optimize outcomes")

	// jargon: 3 x 10, strategic: leverage x 4
	assert.Equal(t, 34, result.Score)
	assert.Equal(t, []string{buzzwordAdvice}, result.Recommendations)

	// leverage is wrapped twice: once by jargon, again by strategic inside the first marker
	expected := "We need to " + mark(mark("leverage")) + " " + mark("synergy") + " to " + mark("optimize") + " outcomes"
	assert.Equal(t, expected, result.Highlighted)
}

func TestScore_ClampsAtMaximum(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("synergy ", 12))

	report := Default().Explain(text)

	assert.Equal(t, 120, report.Raw)
	assert.Equal(t, MaxScore, report.Result.Score)
}

func TestScore_ClicheAndFiller(t *testing.T) {
	result := Default().Score("Let's circle back going forward")

	assert.Equal(t, 10, result.Score)
	assert.Equal(t, []string{clicheAdvice, fillerAdvice}, result.Recommendations)
	assert.Equal(t, "Let's "+mark("circle back")+" "+mark("going forward"), result.Highlighted)
}

func TestScore_AllAdviceInFixedOrder(t *testing.T) {
	result := Default().Score("Moving forward, let's touch base and optimize")

	assert.Equal(t, []string{buzzwordAdvice, clicheAdvice, fillerAdvice}, result.Recommendations)
	// optimize 10 + touch base 7 + moving forward 3
	assert.Equal(t, 20, result.Score)
}

func TestScore_CaseInsensitive(t *testing.T) {
	scorer := Default()

	for _, word := range []string{"LEVERAGE", "Leverage", "leverage", "lEvErAgE"} {
		t.Run(word, func(t *testing.T) {
			result := scorer.Score(word)
			assert.Equal(t, 14, result.Score)
			assert.Equal(t, []string{buzzwordAdvice}, result.Recommendations)
			assert.Contains(t, result.Highlighted, mark(word))
		})
	}
}

func TestScore_WordBoundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "suffix", text: "The enabled team leveraged impactful synergies"},
		{name: "prefix", text: "Reimplement the unoptimized parser"},
		{name: "phrase followed by letters", text: "reach outward and circle backwards"},
		{name: "embedded", text: "transformation and disruptive innovations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Default().Score(tt.text)
			assert.Equal(t, 0, result.Score)
			assert.Equal(t, tt.text, result.Highlighted)
			assert.Equal(t, []string{DefaultFallback}, result.Recommendations)
		})
	}
}

func TestScore_PunctuationIsABoundary(t *testing.T) {
	result := Default().Score("Synergy! (paradigm), disrupt.")

	assert.Equal(t, 28, result.Score)
}

func TestScore_AdviceOnlyForTriggerSubset(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score int
	}{
		{name: "reach out scores without cliche advice", text: "Feel free to reach out", score: 7},
		{name: "end of day scores without filler advice", text: "At the end of the day we ship", score: 3},
		{name: "streamline scores without buzzword advice", text: "We streamline the paradigm", score: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Default().Score(tt.text)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, []string{DefaultFallback}, result.Recommendations)
		})
	}
}

func TestScore_MatchesAreNotDeduplicatedAcrossRules(t *testing.T) {
	report := Default().Explain("leverage leverage")

	require.Len(t, report.Hits, 2)
	assert.Equal(t, RuleHit{Rule: "jargon", Count: 2, Points: 20}, report.Hits[0])
	assert.Equal(t, RuleHit{Rule: "strategic", Count: 2, Points: 8}, report.Hits[1])
	assert.Equal(t, 28, report.Result.Score)
}

func TestScore_BoundsAndIdempotence(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"We leverage holistic, strategic impact to facilitate, enable and utilize synergy.",
		strings.Repeat("think outside the box and revolutionize the paradigm ", 50),
		"ünïcödé tëxt with leverage and émojis 🚀",
		"<span>already marked up leverage</span>",
	}

	scorer := Default()
	for _, input := range inputs {
		first := scorer.Score(input)
		second := scorer.Score(input)

		assert.GreaterOrEqual(t, first.Score, 0)
		assert.LessOrEqual(t, first.Score, MaxScore)
		assert.Equal(t, first, second)
		assert.NotEmpty(t, first.Recommendations)
	}
}

func TestScore_ConcurrentUse(t *testing.T) {
	scorer := Default()
	text := "We need to leverage synergy to optimize outcomes"
	want := scorer.Score(text)

	var wg sync.WaitGroup
	results := make([]AnalysisResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = scorer.Score(text)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestScore_LaterRulesMatchInsideEarlierMarkup(t *testing.T) {
	scorer, err := New(Table{
		Rules: []Rule{
			{Name: "first", Weight: 5, Terms: []string{"foo"}},
			{Name: "second", Weight: 9, Terms: []string{"impact"}},
		},
		HighlightOpen:  "[impact:",
		HighlightClose: "]",
	})
	require.NoError(t, err)

	result := scorer.Score("foo")

	// Markup never counts toward the score
	assert.Equal(t, 5, result.Score)
	assert.Equal(t, "[[impact:impact]:foo]", result.Highlighted)
}

func TestNew_CustomTable(t *testing.T) {
	scorer, err := New(Table{
		Rules: []Rule{
			{
				Name:   "hype",
				Weight: 30,
				Terms:  []string{"rockstar", "ninja"},
				Advice: &Advice{Message: "Drop the hype", Triggers: []string{"Ninja"}},
			},
		},
		Fallback: "fine",
	})
	require.NoError(t, err)

	assert.Equal(t, AnalysisResult{
		Score:           30,
		Highlighted:     mark("rockstar"),
		Recommendations: []string{"fine"},
	}, scorer.Score("rockstar"))

	assert.Equal(t, []string{"Drop the hype"}, scorer.Score("a NINJA").Recommendations)
	assert.Equal(t, 0, Default().Score("rockstar").Score, "default scorer must be unaffected")
}

func TestNew_InvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{name: "no rules", table: Table{}},
		{name: "zero weight", table: Table{Rules: []Rule{{Name: "r", Weight: 0, Terms: []string{"x"}}}}},
		{name: "negative weight", table: Table{Rules: []Rule{{Name: "r", Weight: -3, Terms: []string{"x"}}}}},
		{name: "blank terms", table: Table{Rules: []Rule{{Name: "r", Weight: 1, Terms: []string{" ", ""}}}}},
		{
			name: "trigger outside terms",
			table: Table{Rules: []Rule{{
				Name: "r", Weight: 1, Terms: []string{"x"},
				Advice: &Advice{Message: "m", Triggers: []string{"y"}},
			}}},
		},
		{
			name: "advice without message",
			table: Table{Rules: []Rule{{
				Name: "r", Weight: 1, Terms: []string{"x"},
				Advice: &Advice{Triggers: []string{"x"}},
			}}},
		},
		{
			name: "advice without triggers",
			table: Table{Rules: []Rule{{
				Name: "r", Weight: 1, Terms: []string{"x"},
				Advice: &Advice{Message: "m"},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.table)
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestNew_TermsAreQuoted(t *testing.T) {
	scorer, err := New(Table{Rules: []Rule{{Name: "r", Weight: 2, Terms: []string{"c.e.o"}}}})
	require.NoError(t, err)

	assert.Equal(t, 2, scorer.Score("our c.e.o said").Score)
	assert.Equal(t, 0, scorer.Score("our cxeyo said").Score)
}

func TestMustNew_PanicsOnInvalidTable(t *testing.T) {
	assert.Panics(t, func() { MustNew(Table{}) })
}

func TestBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, BandAuthentic},
		{20, BandAuthentic},
		{21, BandSlightlyCorporate},
		{50, BandSlightlyCorporate},
		{51, BandVeryCorporate},
		{80, BandVeryCorporate},
		{81, BandMaximumCringe},
		{100, BandMaximumCringe},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Band(tt.score), "score %d", tt.score)
	}
}

func TestWithMarkers(t *testing.T) {
	base := Default()
	plain := base.WithMarkers("[", "]")

	result := plain.Score("We leverage synergy")

	assert.Equal(t, "We [[leverage]] [synergy]", result.Highlighted)
	assert.Equal(t, base.Score("We leverage synergy").Score, result.Score)
	assert.Equal(t, mark("synergy"), base.Score("synergy").Highlighted, "original scorer keeps its markers")
}
