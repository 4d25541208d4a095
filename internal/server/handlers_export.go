package server

import (
	"net/http"

	"github.com/jonathan/humane/internal/export"
)

// handleExport renders a post or highlighted text as a downloadable file
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "format", Message: "format must be one of: txt md"})
		return
	}

	if req.Post != "" {
		if err := s.checkPostLength(req.Post); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.downloadResponse(w, export.AnalysisDocument(s.scorer, req.Post, format))
		return
	}

	s.downloadResponse(w, export.Document{
		Filename:    "post." + format.Extension(),
		ContentType: format.ContentType(),
		Body:        export.Render(req.Text, format),
	})
}
