// Package scoring detects corporate buzzwords in a post and rates how "cringe" it reads.
package scoring

// Rule is one weighted entry in a rule table. Every occurrence of any term adds Weight points.
type Rule struct {
	Name   string   `yaml:"name"`
	Weight int      `yaml:"weight"`
	Terms  []string `yaml:"terms"`
	Advice *Advice  `yaml:"advice,omitempty"`
}

// Advice is a recommendation attached to a rule. It fires when the post contains
// at least one of Triggers, regardless of the rule's weight.
type Advice struct {
	Message  string   `yaml:"message"`
	Triggers []string `yaml:"triggers"`
}

// Table is the full scorer configuration.
type Table struct {
	Rules          []Rule `yaml:"rules"`
	Fallback       string `yaml:"fallback"`
	HighlightOpen  string `yaml:"highlight_open"`
	HighlightClose string `yaml:"highlight_close"`
}

const (
	// DefaultFallback is returned as the only recommendation when no advice fires.
	DefaultFallback = "Your post looks good! No major issues found."

	defaultHighlightOpen  = `<span class="bg-yellow-200 dark:bg-yellow-800">`
	defaultHighlightClose = `</span>`
)

// DefaultTable returns the built-in rule table.
// "leverage" appears in both the jargon and strategic rules and scores 14 per occurrence.
func DefaultTable() Table {
	return Table{
		Rules: []Rule{
			{
				Name:   "jargon",
				Weight: 10,
				Terms:  []string{"leverage", "synergy", "optimize", "streamline", "paradigm"},
				Advice: &Advice{
					Message:  "Replace corporate buzzwords with simpler alternatives",
					Triggers: []string{"leverage", "synergy", "optimize"},
				},
			},
			{
				Name:   "change",
				Weight: 8,
				Terms:  []string{"disrupt", "innovate", "transform", "revolutionize"},
			},
			{
				Name:   "cliche",
				Weight: 7,
				Terms:  []string{"think outside the box", "circle back", "touch base", "reach out"},
				Advice: &Advice{
					Message:  "Avoid cliché corporate phrases",
					Triggers: []string{"think outside the box", "circle back", "touch base"},
				},
			},
			{
				Name:   "action",
				Weight: 5,
				Terms:  []string{"utilize", "implement", "facilitate", "enable"},
			},
			{
				Name:   "strategic",
				Weight: 4,
				Terms:  []string{"impact", "leverage", "strategic", "holistic"},
			},
			{
				Name:   "filler",
				Weight: 3,
				Terms:  []string{"going forward", "moving forward", "at the end of the day"},
				Advice: &Advice{
					Message:  "Remove unnecessary filler phrases",
					Triggers: []string{"going forward", "moving forward"},
				},
			},
		},
		Fallback:       DefaultFallback,
		HighlightOpen:  defaultHighlightOpen,
		HighlightClose: defaultHighlightClose,
	}
}
