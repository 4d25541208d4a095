package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// AnalyzeRequest is the body of POST /api/analyze and /api/analyze/deep
type AnalyzeRequest struct {
	Post string `json:"post" validate:"required"`
}

// RewriteRequest is the body of POST /api/rewrite
type RewriteRequest struct {
	Post      string `json:"post" validate:"required"`
	Tone      string `json:"tone" validate:"required"`
	Intensity int    `json:"intensity" validate:"omitempty,min=1,max=10"`
	MaxLength int    `json:"max_length" validate:"omitempty,min=1,max=2000"`
}

// RewriteAllRequest is the body of POST /api/rewrite/all
type RewriteAllRequest struct {
	Post      string `json:"post" validate:"required"`
	Intensity int    `json:"intensity" validate:"omitempty,min=1,max=10"`
	MaxLength int    `json:"max_length" validate:"omitempty,min=1,max=2000"`
}

// DeleteRewriteRequest is the body of DELETE /api/history
type DeleteRewriteRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ExportRequest is the body of POST /api/export. When Post is set it is
// scored and exported with its recommendations; otherwise Text, already
// highlighted, is rendered as is.
type ExportRequest struct {
	Post   string `json:"post"`
	Text   string `json:"text" validate:"required_without=Post"`
	Format string `json:"format" validate:"omitempty,oneof=txt text md markdown"`
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and validates it.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "Request body is required"}
		}
		return &ErrValidation{Field: "body", Message: "Invalid request body"}
	}

	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts the first validator failure into an ErrValidation
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch {
	case field == "post" && fe.Tag() == "required":
		return &ErrValidation{Field: field, Message: msgMissingPost}
	case field == "id" && fe.Tag() == "required":
		return &ErrValidation{Field: field, Message: msgMissingRewriteID}
	case field == "id":
		return &ErrValidation{Field: field, Message: "Invalid rewrite ID"}
	case fe.Tag() == "required", fe.Tag() == "required_without":
		return &ErrValidation{Field: field, Message: fmt.Sprintf("Missing %s", field)}
	case fe.Tag() == "min" || fe.Tag() == "max":
		return &ErrValidation{Field: field, Message: fmt.Sprintf("%s must be between %s", field, bounds(fe))}
	case fe.Tag() == "oneof":
		return &ErrValidation{Field: field, Message: fmt.Sprintf("%s must be one of: %s", field, fe.Param())}
	default:
		return &ErrValidation{Field: field, Message: fmt.Sprintf("Invalid %s", field)}
	}
}

func bounds(fe validator.FieldError) string {
	switch fe.Field() {
	case "intensity":
		return "1 and 10"
	case "max_length":
		return "1 and 2000"
	}
	return "the allowed bounds"
}

// requireText rejects whitespace-only posts for routes that send them to the model.
// Scoring accepts them and reports zero.
func requireText(post string) error {
	if strings.TrimSpace(post) == "" {
		return &ErrValidation{Field: "post", Message: msgMissingPost}
	}
	return nil
}

// checkPostLength rejects posts over the configured maximum
func (s *Server) checkPostLength(post string) error {
	if n := len([]rune(post)); n > s.cfg.MaxPostLength {
		return &ErrValidation{
			Field:   "post",
			Message: fmt.Sprintf("Post is too long (%d characters, max %d)", n, s.cfg.MaxPostLength),
		}
	}
	return nil
}
