// Package rewriting turns posts into less corporate versions using an LLM.
package rewriting

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/humane/internal/llm"
	"github.com/jonathan/humane/internal/prompts"
)

// Tones offered by the playground, in display order.
const (
	ToneHumanRelatable = "Human + Relatable"
	ToneBoldEdgy       = "Bold + Edgy"
	TonePlayfulWitty   = "Playful + Witty"
)

// DefaultTones is the set fanned out by RewriteAllTones.
var DefaultTones = []string{ToneHumanRelatable, ToneBoldEdgy, TonePlayfulWitty}

// Request bounds.
const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
	MaxLengthLimit   = 2000
	DefaultMaxLength = 1000
)

// Request describes a single-tone rewrite.
type Request struct {
	Post      string
	Tone      string
	Intensity int // 1-10; zero means DefaultIntensity
	MaxLength int // characters, 1-2000; zero means DefaultMaxLength
}

// ToneRewrite is one rewritten version of a post.
type ToneRewrite struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// Rewriter generates rewrites through an llm.Client. It is safe for
// concurrent use when the client is.
type Rewriter struct {
	client llm.Client
}

// New creates a Rewriter.
func New(client llm.Client) *Rewriter {
	return &Rewriter{client: client}
}

// normalize applies defaults and checks bounds.
func (req Request) normalize() (Request, error) {
	req.Post = strings.TrimSpace(req.Post)
	req.Tone = strings.TrimSpace(req.Tone)
	if req.Post == "" {
		return req, &ValidationError{Field: "post", Message: "is required"}
	}
	if req.Tone == "" {
		return req, &ValidationError{Field: "tone", Message: "is required"}
	}
	if req.Intensity == 0 {
		req.Intensity = DefaultIntensity
	}
	if req.Intensity < MinIntensity || req.Intensity > MaxIntensity {
		return req, &ValidationError{Field: "intensity", Message: "must be a number between 1 and 10"}
	}
	if req.MaxLength == 0 {
		req.MaxLength = DefaultMaxLength
	}
	if req.MaxLength < 1 || req.MaxLength > MaxLengthLimit {
		return req, &ValidationError{Field: "max_length", Message: "must be a number between 1 and 2000"}
	}
	return req, nil
}

// RewritePost rewrites a post in the requested tone.
func (r *Rewriter) RewritePost(ctx context.Context, req Request) (string, error) {
	req, err := req.normalize()
	if err != nil {
		return "", err
	}

	prompt := buildRewritePrompt(req)

	// Single-tone rewrites are short; the lite tier is enough
	responseText, err := r.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &APICallError{
			Message: "failed to generate rewrite for tone " + req.Tone,
			Cause:   err,
		}
	}

	text := parseRewriteResponse(responseText)
	if text == "" {
		return "", &ParseError{Message: "empty rewrite for tone " + req.Tone}
	}

	return truncateRunes(text, req.MaxLength), nil
}

func buildRewritePrompt(req Request) string {
	template := prompts.MustGet("rewriting.json", "rewrite-post")
	return prompts.Format(template, map[string]string{
		"Post":      req.Post,
		"Tone":      req.Tone,
		"Intensity": strconv.Itoa(req.Intensity),
		"MaxLength": strconv.Itoa(req.MaxLength),
	})
}

// parseRewriteResponse extracts the rewrite from a plain-text response.
// Code fences, a JSON {"text": ...} wrapper and surrounding quotes are removed.
func parseRewriteResponse(responseText string) string {
	text := strings.TrimSpace(responseText)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
			lines = lines[:len(lines)-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	var jsonResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(text), &jsonResp); err == nil && jsonResp.Text != "" {
		text = strings.TrimSpace(jsonResp.Text)
	}

	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	return text
}

// truncateRunes shortens text to at most limit characters, preferring to cut
// at the last space.
func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)[:limit]
	cut := string(runes)
	if idx := strings.LastIndexAny(cut, " \n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
