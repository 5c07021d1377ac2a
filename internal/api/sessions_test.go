package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cvgo/cvgo/internal/intake"
	"github.com/cvgo/cvgo/internal/mapping"
	"github.com/cvgo/cvgo/internal/storage"
)

const testToken = "test-token-12345"

func setupHandler(t *testing.T) (http.Handler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(Deps{
		Store:      store,
		Intake:     intake.NewService(store, mapping.NewTables()),
		Token:      testToken,
		UploadsDir: t.TempDir(),
	})
	return handler, store
}

func jsonReq(method, url, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCreateSession_NewThenResume(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, want %d; body = %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("resume status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Created bool `json:"created"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Created {
		t.Error("resume should report created=false")
	}
}

func TestGetSummary_UnknownSession(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodGet, "/sessions/nope/", ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestFinalize_CompletesProfile(t *testing.T) {
	h, store := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d", rr.Code)
	}

	body := `{"name":"Dana Levi","email":"dana@example.com","phone":"0501234567","experienceText":"אין"}`
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/finalize", body))
	if rr.Code != http.StatusOK {
		t.Fatalf("finalize status = %d; body = %s", rr.Code, rr.Body.String())
	}

	var resp intake.FinalizeResult
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.WasMerged {
		t.Error("no collision expected")
	}
	if !resp.Student.ProfileComplete {
		t.Error("profile should be complete")
	}

	got, err := store.GetStudentBySession("sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Phone != "050-123-4567" {
		t.Errorf("phone = %q, want formatted", got.Phone)
	}
}

func TestFinalize_BadEmail(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/finalize", `{"email":"nope"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestVerify_ConflictMapsTo409(t *testing.T) {
	h, store := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/old/", ""))
	existing, err := store.GetStudentBySession("old")
	if err != nil {
		t.Fatalf("loading seeded session: %v", err)
	}
	existing.Email = "taken@example.com"
	if err := store.UpdateStudent(existing); err != nil {
		t.Fatalf("seeding email: %v", err)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/new/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/new/verify", `{"email":"taken@example.com"}`))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestReplace_MissingExisting(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/replace", `{"existingId":"no-such"}`))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func multipartUpload(t *testing.T, url, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCVUpload_ParsesContactDetails(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, multipartUpload(t, "/sessions/sess-1/cv", "cv.txt", "Dana Levi\n\ndana@example.com\n050-123-4567\n"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	var resp intake.CVUploadResult
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Student.Email != "dana@example.com" {
		t.Errorf("email = %q", resp.Student.Email)
	}
	if resp.RequiresConfirmation {
		t.Error("no collision expected")
	}
}

func TestCVUpload_RejectsBadExtension(t *testing.T) {
	h, _ := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, multipartUpload(t, "/sessions/sess-1/cv", "cv.exe", "MZ"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTranscriptUpload(t *testing.T) {
	h, store := setupHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, jsonReq(http.MethodPost, "/sessions/sess-1/", ""))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, multipartUpload(t, "/sessions/sess-1/transcript", "grades.pdf", "%PDF-1.4"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	got, err := store.GetStudentBySession("sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Education.Transcript == nil || got.Education.Transcript.Filename != "grades.pdf" {
		t.Errorf("transcript not attached: %+v", got.Education.Transcript)
	}
}
