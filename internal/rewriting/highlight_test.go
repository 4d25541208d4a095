package rewriting

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeFactor(t *testing.T) {
	tests := []struct {
		factor string
		want   string
	}{
		{"leveraging synergies", CategoryJargon},
		{"a real game-changer", CategoryJargon},
		{"Humbled to share", CategoryHumbleBrag},
		{"excited to announce", CategoryHumbleBrag},
		{"It is with great pleasure", CategoryFormal},
		{"Please share this post", CategoryBegging},
		{"it would mean the world", CategoryBegging},
		{"lessons from my toddler", CategoryDefault},
	}

	for _, tt := range tests {
		t.Run(tt.factor, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeFactor(tt.factor))
		})
	}
}

func TestHighlightCringeFactors(t *testing.T) {
	post := "Thrilled to announce our new synergy, please share!"

	got := HighlightCringeFactors(post, []string{"synergy", "please share", "Thrilled to announce"})

	assert.Equal(t,
		`<span class="cringe" title="Humble-brag">Thrilled to announce</span> our new `+
			`<span class="cringe" title="Corporate jargon/buzzword">synergy</span>, `+
			`<span class="cringe" title="Begging for engagement">please share</span>!`,
		got)
}

func TestHighlightCringeFactors_CaseInsensitive(t *testing.T) {
	got := HighlightCringeFactors("SYNERGY matters", []string{"synergy"})

	assert.Equal(t, `<span class="cringe" title="Corporate jargon/buzzword">SYNERGY</span> matters`, got)
}

func TestHighlightCringeFactors_RequiresBoundaries(t *testing.T) {
	post := "Our synergyverse launches"

	assert.Equal(t, post, HighlightCringeFactors(post, []string{"synergy"}))
}

func TestHighlightCringeFactors_NoFactors(t *testing.T) {
	post := "Plain post"

	assert.Equal(t, post, HighlightCringeFactors(post, nil))
	assert.Equal(t, post, HighlightCringeFactors(post, []string{"", "  "}))
	assert.Equal(t, post, HighlightCringeFactors(post, []string{"not present"}))
}

func TestHighlightCringeFactors_SpecialCharacters(t *testing.T) {
	got := HighlightCringeFactors("We 10x (really) grew", []string{"(really)"})

	assert.Contains(t, got, `<span class="cringe" title="Cringe element">(really)</span>`)
}

func TestHighlightCringeFactors_SpanStructure(t *testing.T) {
	post := "Humbled to share our synergy story"

	got := HighlightCringeFactors(post, []string{"synergy", "Humbled to share"})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got))
	require.NoError(t, err)

	spans := doc.Find("span.cringe")
	require.Equal(t, 2, spans.Length())

	want := []struct{ text, title string }{
		{"Humbled to share", CategoryHumbleBrag},
		{"synergy", CategoryJargon},
	}
	spans.Each(func(i int, s *goquery.Selection) {
		title, ok := s.Attr("title")
		assert.True(t, ok)
		assert.Equal(t, want[i].title, title)
		assert.Equal(t, want[i].text, s.Text())
	})
	assert.Equal(t, post, doc.Find("body").Text())
}
