package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/humane/internal/db"
	"github.com/jonathan/humane/internal/export"
	"github.com/jonathan/humane/internal/server/middleware"
)

// Pagination is the paging block of a history response
type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// HistoryResponse is the body returned by GET /api/history
type HistoryResponse struct {
	Rewrites   []db.Rewrite `json:"rewrites"`
	Pagination Pagination   `json:"pagination"`
}

// handleListHistory returns one page of the user's rewrites, newest first
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceStore})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthorized{})
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page > db.MaxPage {
		s.writeError(w, r, &ErrValidation{Field: "page", Message: fmt.Sprintf("page must be at most %d", db.MaxPage)})
		return
	}
	limit, err := queryInt(r, "limit", db.DefaultPageLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.history.ListRewritesPage(r.Context(), userID, page, limit)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to list history: %w", err))
		return
	}

	rewrites := result.Rewrites
	if rewrites == nil {
		rewrites = []db.Rewrite{}
	}
	s.jsonResponse(w, http.StatusOK, HistoryResponse{
		Rewrites: rewrites,
		Pagination: Pagination{
			Total:   result.Total,
			Page:    result.Page,
			Limit:   result.Limit,
			HasMore: result.HasMore,
		},
	})
}

// handleDeleteHistory deletes one of the user's rewrites
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceStore})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthorized{})
		return
	}

	var req DeleteRewriteRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "id", Message: "Invalid rewrite ID"})
		return
	}

	deleted, err := s.history.DeleteRewrite(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to delete rewrite: %w", err))
		return
	}
	if !deleted {
		s.writeError(w, r, &ErrNotFound{Resource: "Rewrite", ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Rewrite deleted successfully",
	})
}

// handleExportHistory downloads a saved rewrite as txt or md
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceStore})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthorized{})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "id", Message: "Invalid rewrite ID"})
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "format", Message: "format must be one of: txt md"})
		return
	}

	rewrite, err := s.history.GetRewrite(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to load rewrite: %w", err))
		return
	}
	if rewrite == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "Rewrite", ID: id})
		return
	}

	s.downloadResponse(w, export.RewriteDocument(rewrite, format))
}

// downloadResponse writes a document as an attachment
func (s *Server) downloadResponse(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Body))
}

// queryInt parses an optional positive integer query parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &ErrValidation{Field: name, Message: fmt.Sprintf("%s must be a positive integer", name)}
	}
	return v, nil
}
