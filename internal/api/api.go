// Package api exposes the HTTP surface: candidate session endpoints keyed by
// session token, and bearer-authenticated agency endpoints that only ever see
// anonymized profiles.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cvgo/cvgo/internal/intake"
	"github.com/cvgo/cvgo/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB, JSON bodies only; uploads have their own cap

// Deps holds what the handlers need.
type Deps struct {
	Store      *storage.Store
	Intake     *intake.Service
	Token      string // agency API bearer token
	UploadsDir string
}

// NewHandler builds the full router. Session endpoints authenticate by
// knowing the session token in the path; agency endpoints require the bearer
// token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/", handleCreateSession(deps))
		r.Get("/", handleGetSummary(deps))
		r.Post("/cv", handleCVUpload(deps))
		r.Post("/verify", handleVerify(deps))
		r.Post("/transcript", handleTranscriptUpload(deps))
		r.Post("/finalize", handleFinalize(deps))
		r.Post("/replace", handleReplace(deps))
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/students", handleListStudents(deps))
		r.Get("/students/{id}", handleGetStudent(deps))
		r.Get("/statistics", handleStatistics(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.Is(err, intake.ErrValidation):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, intake.ErrConflict):
		httpError(w, http.StatusConflict, "conflict", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
