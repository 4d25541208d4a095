package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/humane/internal/rewriting"
	"github.com/jonathan/humane/internal/scoring"
)

// AnalyzeResponse is the body returned by POST /api/analyze
type AnalyzeResponse struct {
	scoring.AnalysisResult
	Label string `json:"label"`
}

// handleAnalyze scores a post locally
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkPostLength(req.Post); err != nil {
		s.writeError(w, r, err)
		return
	}

	report := s.scorer.Explain(req.Post)
	s.metrics.ObserveScore(report)

	s.jsonResponse(w, http.StatusOK, AnalyzeResponse{
		AnalysisResult: report.Result,
		Label:          scoring.Band(report.Result.Score),
	})
}

// handleDeepAnalyze runs the two-stage LLM analysis
func (s *Server) handleDeepAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.rewriter == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceLLM})
		return
	}

	var req AnalyzeRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireText(req.Post); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkPostLength(req.Post); err != nil {
		s.writeError(w, r, err)
		return
	}

	var result *rewriting.DeepAnalysis
	err := s.callLLM(r.Context(), "analyze_deep", func(ctx context.Context) error {
		var err error
		result, err = s.rewriter.AnalyzeAndRewrite(ctx, req.Post)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// callLLM runs fn under the configured LLM timeout and records it in metrics.
func (s *Server) callLLM(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveLLMCall(operation, err, time.Since(start))
	return err
}
