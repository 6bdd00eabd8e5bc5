package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// Problem types carried in the "type" member of error responses.
const (
	ProblemValidation    = "validation_error"
	ProblemNotFound      = "not_found"
	ProblemConfiguration = "configuration_error"
	ProblemUnavailable   = "store_unavailable"
	ProblemInternal      = "internal_error"
)

// Problem is the simplified RFC 7807 body of every error response.
type Problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, p Problem) {
	p.Title = http.StatusText(p.Status)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, lg *logger.Logger, action string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, Problem{Type: ProblemValidation, Status: http.StatusBadRequest, Detail: err.Error(), Fields: ve.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, Problem{Type: ProblemNotFound, Status: http.StatusNotFound, Detail: err.Error()})
	case errors.Is(err, domain.ErrConfiguration):
		lg.Error(action, err, nil)
		writeProblem(w, Problem{Type: ProblemConfiguration, Status: http.StatusInternalServerError, Detail: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		lg.Error(action, err, nil)
		writeProblem(w, Problem{Type: ProblemUnavailable, Status: http.StatusServiceUnavailable, Detail: err.Error()})
	default:
		lg.Error(action, err, nil)
		writeProblem(w, Problem{Type: ProblemInternal, Status: http.StatusInternalServerError, Detail: err.Error()})
	}
}

// decode reads a JSON body into v. Malformed bodies are validation errors.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Fields: map[string]string{"body": fmt.Sprintf("invalid JSON: %v", err)}}
	}
	return nil
}
