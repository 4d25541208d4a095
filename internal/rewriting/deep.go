package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/humane/internal/llm"
	"github.com/jonathan/humane/internal/prompts"
	"github.com/jonathan/humane/internal/schemas"
)

// TooCringeScore is the LLM score above which no rewrites are offered.
const TooCringeScore = 80

// TooCringeMessage replaces all recommendations for posts above TooCringeScore.
const TooCringeMessage = "That's too cringe, even for us"

// targetReduction is how far below the current score rewrites should land.
const targetReduction = 30

// PostAnalysis is the first-stage LLM reading of a post.
type PostAnalysis struct {
	Score        float64  `json:"score"`
	CoreMessage  string   `json:"core_message"`
	Improvements []string `json:"improvements"`
	KeyElements  []string `json:"key_elements"`
	ToneGuidance string   `json:"tone_guidance"`
}

type personaRewrite struct {
	Analysis struct {
		Score           float64  `json:"score"`
		TargetScore     float64  `json:"target_score"`
		CringeFactors   []string `json:"cringe_factors"`
		Recommendations []string `json:"recommendations"`
	} `json:"analysis"`
	Rewrites struct {
		HumanRelatable string `json:"human_relatable"`
		BoldEdgy       string `json:"bold_edgy"`
		PlayfulWitty   string `json:"playful_witty"`
	} `json:"rewrites"`
}

// DeepAnalysis is the combined result of the two-stage analysis.
type DeepAnalysis struct {
	Score           int           `json:"score"`
	TargetScore     int           `json:"target_score"`
	Highlighted     string        `json:"highlighted"`
	Recommendations []string      `json:"recommendations"`
	Rewrites        []ToneRewrite `json:"rewrites"`
}

// AnalyzeAndRewrite analyzes a post, then rewrites it in three personas guided
// by that analysis.
func (r *Rewriter) AnalyzeAndRewrite(ctx context.Context, post string) (*DeepAnalysis, error) {
	post = strings.TrimSpace(post)
	if post == "" {
		return nil, &ValidationError{Field: "post", Message: "is required"}
	}

	analysis, err := r.analyzePost(ctx, post)
	if err != nil {
		return nil, err
	}

	prompt := buildPersonaPrompt(post, analysis)
	responseText, err := r.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate persona rewrites", Cause: err}
	}

	var result personaRewrite
	if err := decodeValidated(responseText, schemas.PersonaRewrite, &result); err != nil {
		return nil, err
	}

	score := clampScore(result.Analysis.Score)
	target := clampScore(result.Analysis.TargetScore)
	if target == 0 {
		target = max(0, score-targetReduction)
	}

	deep := &DeepAnalysis{
		Score:           score,
		TargetScore:     target,
		Highlighted:     HighlightCringeFactors(post, result.Analysis.CringeFactors),
		Recommendations: result.Analysis.Recommendations,
		Rewrites: []ToneRewrite{
			{Tone: ToneHumanRelatable, Text: strings.TrimSpace(result.Rewrites.HumanRelatable)},
			{Tone: ToneBoldEdgy, Text: strings.TrimSpace(result.Rewrites.BoldEdgy)},
			{Tone: TonePlayfulWitty, Text: strings.TrimSpace(result.Rewrites.PlayfulWitty)},
		},
	}
	if deep.Recommendations == nil {
		deep.Recommendations = []string{}
	}
	if score > TooCringeScore {
		deep.Recommendations = []string{TooCringeMessage}
		deep.Rewrites = []ToneRewrite{}
	}

	return deep, nil
}

func (r *Rewriter) analyzePost(ctx context.Context, post string) (*PostAnalysis, error) {
	template := prompts.MustGet("rewriting.json", "analyze-post")
	prompt := prompts.Format(template, map[string]string{"Post": post})

	responseText, err := r.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to analyze post", Cause: err}
	}

	var analysis PostAnalysis
	if err := decodeValidated(responseText, schemas.PostAnalysis, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// decodeValidated extracts the JSON object from an LLM response, checks it
// against an embedded schema and decodes it into v.
func decodeValidated(responseText, schema string, v any) error {
	cleaned := llm.CleanJSONBlock(responseText)
	if !json.Valid([]byte(cleaned)) {
		return &ParseError{Message: fmt.Sprintf("response for %s is not valid JSON", schema)}
	}
	if err := schemas.Validate(schema, cleaned); err != nil {
		return &ParseError{Message: fmt.Sprintf("response does not match %s schema", schema), Cause: err}
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &ParseError{Message: fmt.Sprintf("failed to decode %s", schema), Cause: err}
	}
	return nil
}

func buildPersonaPrompt(post string, analysis *PostAnalysis) string {
	score := clampScore(analysis.Score)

	var improvements strings.Builder
	for i, imp := range analysis.Improvements {
		if i > 0 {
			improvements.WriteString("\n")
		}
		improvements.WriteString("  - ")
		improvements.WriteString(imp)
	}

	template := prompts.MustGet("rewriting.json", "rewrite-personas")
	return prompts.Format(template, map[string]string{
		"Post":         post,
		"CoreMessage":  analysis.CoreMessage,
		"Improvements": improvements.String(),
		"KeyElements":  strings.Join(analysis.KeyElements, ", "),
		"ToneGuidance": analysis.ToneGuidance,
		"Score":        strconv.Itoa(score),
		"TargetScore":  strconv.Itoa(max(0, score-targetReduction)),
		"PostLength":   strconv.Itoa(utf8.RuneCountInString(post)),
	})
}

func clampScore(v float64) int {
	return min(max(int(math.Round(v)), 0), 100)
}
