package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cvgo/cvgo/internal/intake"
	"github.com/cvgo/cvgo/internal/validate"
)

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		student, created, err := deps.Intake.CreateSession(sessionID)
		if err != nil {
			serviceError(w, err)
			return
		}

		code := http.StatusOK
		if created {
			code = http.StatusCreated
		}
		writeJSON(w, code, map[string]any{
			"student": student,
			"created": created,
		})
	}
}

func handleGetSummary(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		summary, err := deps.Intake.Summary(sessionID)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func handleCVUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		filename, path, size, err := saveUpload(r, deps.UploadsDir)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "upload failed: %v", err)
			return
		}

		result, err := deps.Intake.ProcessCVUpload(sessionID, filename, path, size)
		if err != nil {
			os.Remove(path)
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleVerify(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var corrections intake.Corrections
		if err := json.NewDecoder(r.Body).Decode(&corrections); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		student, err := deps.Intake.VerifyParsedData(sessionID, corrections)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"student": student})
	}
}

func handleTranscriptUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		filename, path, size, err := saveUpload(r, deps.UploadsDir)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "upload failed: %v", err)
			return
		}

		student, err := deps.Intake.ProcessTranscriptUpload(sessionID, filename, path, size)
		if err != nil {
			os.Remove(path)
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"student": student})
	}
}

func handleFinalize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var fields intake.FieldSet
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result, err := deps.Intake.FinalizeWithMerge(sessionID, fields)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type replaceRequest struct {
	ExistingID string `json:"existingId"`
}

func handleReplace(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req replaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.ExistingID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "existingId is required")
			return
		}

		student, err := deps.Intake.ReplaceWithSession(sessionID, req.ExistingID)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"student": student, "success": true})
	}
}

// saveUpload stores the multipart "file" part under dir with a random prefix
// and returns the original filename, the stored path, and the size.
func saveUpload(r *http.Request, dir string) (filename, path string, size int64, err error) {
	if err := r.ParseMultipartForm(validate.MaxUploadSize); err != nil {
		return "", "", 0, fmt.Errorf("parsing multipart form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", 0, fmt.Errorf("missing file part: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("creating uploads directory: %w", err)
	}

	// Never trust the client filename for the on-disk name.
	base := filepath.Base(header.Filename)
	stored := filepath.Join(dir, uuid.New().String()+strings.ToLower(filepath.Ext(base)))
	dst, err := os.Create(stored)
	if err != nil {
		return "", "", 0, fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(stored)
		return "", "", 0, fmt.Errorf("writing upload: %w", err)
	}
	return base, stored, n, nil
}
