// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/humane/internal/export"
	"github.com/jonathan/humane/internal/rewriting"
	"github.com/jonathan/humane/internal/scoring"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// innerWidth is the text width inside a box
	innerWidth = boxWidth - 4
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, wrapped := range wrapLine(line, innerWidth) {
			fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, wrapped)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrapLine splits line into pieces of at most width runes, keeping leading
// indentation on continuation lines. Words longer than width are split.
func wrapLine(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	var lines []string
	current := indent
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(indent+word) > width {
			if strings.TrimSpace(current) != "" {
				lines = append(lines, current)
				current = indent
			}
			runes := []rune(word)
			cut := width - utf8.RuneCountInString(indent)
			lines = append(lines, indent+string(runes[:cut]))
			word = string(runes[cut:])
		}
		switch {
		case strings.TrimSpace(current) == "":
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = indent + word
		}
	}
	if strings.TrimSpace(current) != "" {
		lines = append(lines, current)
	}
	return lines
}

// terminalText renders highlight markup as markdown emphasis
func terminalText(highlighted string) string {
	return strings.TrimSpace(export.Render(highlighted, export.FormatMarkdown))
}

// PrintAnalysis outputs a scored post with its rule breakdown and recommendations.
func (p *Printer) PrintAnalysis(report scoring.Report) {
	result := report.Result

	var sb strings.Builder
	if text := terminalText(result.Highlighted); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	if len(report.Hits) > 0 {
		sb.WriteString("Matches:\n")
		for _, hit := range report.Hits {
			fmt.Fprintf(&sb, "  %-10s x%-3d +%d\n", hit.Rule, hit.Count, hit.Points)
		}
		if report.Raw > scoring.MaxScore {
			fmt.Fprintf(&sb, "  (raw total %d, capped at %d)\n", report.Raw, scoring.MaxScore)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Recommendations:\n")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&sb, "  • %s\n", rec)
	}

	title := fmt.Sprintf("CRINGE SCORE: %d/100 (%s)", result.Score, scoring.Band(result.Score))
	p.printBox(title, sb.String())
}

// PrintRewrites outputs one box per tone.
func (p *Printer) PrintRewrites(rewrites []rewriting.ToneRewrite) {
	for _, rw := range rewrites {
		p.printBox(strings.ToUpper(rw.Tone), rw.Text)
	}
}

// PrintDeepAnalysis outputs the LLM analysis followed by its rewrites.
func (p *Printer) PrintDeepAnalysis(analysis *rewriting.DeepAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(terminalText(analysis.Highlighted))
	sb.WriteString("\n\n")
	if len(analysis.Rewrites) > 0 {
		fmt.Fprintf(&sb, "Target score: %d\n\n", analysis.TargetScore)
	}
	sb.WriteString("Recommendations:\n")
	for _, rec := range analysis.Recommendations {
		fmt.Fprintf(&sb, "  • %s\n", rec)
	}

	p.printBox(fmt.Sprintf("DEEP ANALYSIS: %d/100", analysis.Score), sb.String())
	p.PrintRewrites(analysis.Rewrites)
}
