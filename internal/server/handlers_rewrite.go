package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/humane/internal/db"
	"github.com/jonathan/humane/internal/quota"
	"github.com/jonathan/humane/internal/rewriting"
	"github.com/jonathan/humane/internal/server/middleware"
)

// RewriteResponse is the body returned by POST /api/rewrite
type RewriteResponse struct {
	RewrittenPost string `json:"rewritten_post"`
}

// RewriteAllResponse is the body returned by POST /api/rewrite/all
type RewriteAllResponse struct {
	Rewrites []rewriting.ToneRewrite `json:"rewrites"`
}

// handleRewrite rewrites a post in one tone
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if s.rewriter == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceLLM})
		return
	}

	var req RewriteRequest
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

	userID, signedIn := s.optionalUser(r)
	if signedIn {
		if err := s.reserveRewrite(r.Context(), userID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var text string
	err := s.callLLM(r.Context(), "rewrite", func(ctx context.Context) error {
		var err error
		text, err = s.rewriter.RewritePost(ctx, rewriting.Request{
			Post:      req.Post,
			Tone:      req.Tone,
			Intensity: req.Intensity,
			MaxLength: req.MaxLength,
		})
		return err
	})
	if err != nil {
		if signedIn {
			s.releaseRewrite(r.Context(), userID)
		}
		s.writeError(w, r, err)
		return
	}

	if signedIn {
		s.saveHistory(r.Context(), userID, req.Post, []rewriting.ToneRewrite{{Tone: req.Tone, Text: text}})
	}

	s.jsonResponse(w, http.StatusOK, RewriteResponse{RewrittenPost: text})
}

// handleRewriteAll rewrites a post in every default tone. It counts as one rewrite.
func (s *Server) handleRewriteAll(w http.ResponseWriter, r *http.Request) {
	if s.rewriter == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceLLM})
		return
	}

	var req RewriteAllRequest
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

	userID, signedIn := s.optionalUser(r)
	if signedIn {
		if err := s.reserveRewrite(r.Context(), userID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var rewrites []rewriting.ToneRewrite
	err := s.callLLM(r.Context(), "rewrite_all", func(ctx context.Context) error {
		var err error
		rewrites, err = s.rewriter.RewriteAllTones(ctx, req.Post, req.Intensity, req.MaxLength)
		return err
	})
	if err != nil {
		if signedIn {
			s.releaseRewrite(r.Context(), userID)
		}
		s.writeError(w, r, err)
		return
	}

	if signedIn {
		s.saveHistory(r.Context(), userID, req.Post, rewrites)
	}

	s.jsonResponse(w, http.StatusOK, RewriteAllResponse{Rewrites: rewrites})
}

// optionalUser returns the signed-in user. Anonymous requests only reach
// handlers in development.
func (s *Server) optionalUser(r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	return userID, err == nil
}

// reserveRewrite claims one rewrite from the user's quota before the model
// is called. Users who have used up their free rewrites are refused.
func (s *Server) reserveRewrite(ctx context.Context, userID uuid.UUID) error {
	if s.quota == nil {
		return nil
	}
	if _, err := s.quota.Reserve(ctx, userID); err != nil {
		if errors.Is(err, quota.ErrLimitReached) {
			s.metrics.ObserveQuotaDenial()
			return &ErrQuotaExceeded{Limit: s.quota.Limit()}
		}
		return err
	}
	return nil
}

// releaseRewrite hands back a reservation when no rewrite was produced
func (s *Server) releaseRewrite(ctx context.Context, userID uuid.UUID) {
	if s.quota == nil {
		return
	}
	if err := s.quota.Release(context.WithoutCancel(ctx), userID); err != nil {
		log.Printf("[rewrite] failed to release usage for user %s: %v", userID, err)
	}
}

// saveHistory stores each rewrite with the score of the original post.
// Failures are logged; the user already has their rewrite.
func (s *Server) saveHistory(ctx context.Context, userID uuid.UUID, post string, rewrites []rewriting.ToneRewrite) {
	if s.history == nil {
		return
	}
	score := s.scorer.Score(post).Score
	for _, rw := range rewrites {
		record := &db.Rewrite{
			UserID:        userID,
			OriginalPost:  post,
			RewrittenPost: rw.Text,
			Tone:          rw.Tone,
			CringeScore:   score,
		}
		if err := s.history.SaveRewrite(ctx, record); err != nil {
			log.Printf("[rewrite] failed to save history for user %s: %v", userID, err)
		}
	}
}
