// Package export renders highlighted posts and saved rewrites as plain text or markdown.
package export

import (
	"fmt"
	"regexp"
	"strings"
)

// Format is an export file format
type Format string

// Supported formats
const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts "txt", "text", "md" or "markdown"; empty means txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the file extension without a dot
func (f Format) Extension() string {
	return string(f)
}

// spanTag matches highlight span tags. Posts are not escaped before they are
// highlighted, so every other "<" or "&" is literal text.
var spanTag = regexp.MustCompile(`(?i)<span(?:\s[^<>]*)?>|</span\s*>`)

// Render converts highlighted text to the target format. Only span tags are
// treated as markup: txt drops them, md turns each outermost span into a
// **bold** run. All other text is kept byte for byte.
func Render(highlighted string, format Format) string {
	return convertMarks(highlighted, spanTag, func(tag string) bool {
		return !strings.HasPrefix(tag, "</")
	}, format)
}

// convertMarks removes the tokens matched by tags, emboldening outermost
// open/close runs in markdown. Unbalanced closes are dropped and an unclosed
// run extends to the end of the text.
func convertMarks(text string, tags *regexp.Regexp, opens func(string) bool, format Format) string {
	out := make([]byte, 0, len(text))
	depth, runStart, last := 0, 0, 0

	for _, loc := range tags.FindAllStringIndex(text, -1) {
		out = append(out, text[last:loc[0]]...)
		last = loc[1]

		if opens(text[loc[0]:loc[1]]) {
			if depth == 0 {
				runStart = len(out)
			}
			depth++
			continue
		}
		if depth == 0 {
			continue
		}
		depth--
		if depth == 0 && format == FormatMarkdown {
			out = embolden(out, runStart)
		}
	}
	out = append(out, text[last:]...)
	if depth > 0 && format == FormatMarkdown {
		out = embolden(out, runStart)
	}
	return string(out)
}

func embolden(out []byte, start int) []byte {
	run := string(out[start:])
	if strings.TrimSpace(run) == "" {
		return out
	}
	out = append(out[:start], "**"...)
	out = append(out, run...)
	return append(out, "**"...)
}
