package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/humane/internal/db"
	"github.com/jonathan/humane/internal/scoring"
)

// Document is a rendered file ready to download
type Document struct {
	Filename    string
	ContentType string
	Body        string
}

// RewriteDocument renders a saved rewrite with its original post and score.
func RewriteDocument(r *db.Rewrite, format Format) Document {
	var sb strings.Builder
	score := fmt.Sprintf("%d/100 (%s)", r.CringeScore, scoring.Band(r.CringeScore))
	date := r.CreatedAt.UTC().Format("2006-01-02")

	switch format {
	case FormatMarkdown:
		sb.WriteString("# Rewrite\n\n")
		fmt.Fprintf(&sb, "- **Tone:** %s\n", r.Tone)
		fmt.Fprintf(&sb, "- **Cringe score:** %s\n", score)
		fmt.Fprintf(&sb, "- **Date:** %s\n\n", date)
		sb.WriteString("## Original\n\n")
		sb.WriteString(quoteMarkdown(r.OriginalPost))
		sb.WriteString("\n\n## Rewritten\n\n")
		sb.WriteString(strings.TrimSpace(r.RewrittenPost))
		sb.WriteString("\n")
	default:
		fmt.Fprintf(&sb, "Tone: %s\n", r.Tone)
		fmt.Fprintf(&sb, "Cringe score: %s\n", score)
		fmt.Fprintf(&sb, "Date: %s\n\n", date)
		sb.WriteString("Original:\n")
		sb.WriteString(strings.TrimSpace(r.OriginalPost))
		sb.WriteString("\n\nRewritten:\n")
		sb.WriteString(strings.TrimSpace(r.RewrittenPost))
		sb.WriteString("\n")
	}

	return Document{
		Filename:    fmt.Sprintf("rewrite-%s.%s", r.ID.String()[:8], format.Extension()),
		ContentType: format.ContentType(),
		Body:        sb.String(),
	}
}

// AnalysisDocument scores post and renders it with its recommendations. The
// txt body is the post itself; md bolds each highlighted run.
func AnalysisDocument(scorer *scoring.Scorer, post string, format Format) Document {
	result := scorer.Score(post)
	body := post
	if format == FormatMarkdown {
		body = Markdown(scorer, post)
	}

	var sb strings.Builder
	score := fmt.Sprintf("%d/100 (%s)", result.Score, scoring.Band(result.Score))
	if format == FormatMarkdown {
		fmt.Fprintf(&sb, "# Cringe score: %s\n\n", score)
		sb.WriteString(strings.TrimSpace(body))
		sb.WriteString("\n\n## Recommendations\n\n")
	} else {
		fmt.Fprintf(&sb, "Cringe score: %s\n\n", score)
		sb.WriteString(strings.TrimSpace(body))
		sb.WriteString("\n\nRecommendations:\n")
	}
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}

	return Document{
		Filename:    "analysis." + format.Extension(),
		ContentType: format.ContentType(),
		Body:        sb.String(),
	}
}

// Private-use runes stand in for highlight markup so the post is never read as HTML.
const (
	markOpen  = "\uE000"
	markClose = "\uE001"
)

var (
	markTag      = regexp.MustCompile("[\uE000\uE001]")
	markStripper = strings.NewReplacer(markOpen, "", markClose, "")
)

// Markdown scores post and bolds every highlighted run. Rule terms and the
// rest of the text are kept as written.
func Markdown(scorer *scoring.Scorer, post string) string {
	marked := scorer.WithMarkers(markOpen, markClose).Score(markStripper.Replace(post)).Highlighted
	return convertMarks(marked, markTag, func(tag string) bool {
		return tag == markOpen
	}, FormatMarkdown)
}

func quoteMarkdown(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("> "+line, " ")
	}
	return strings.Join(lines, "\n")
}
