package intake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing cv fixture: %v", err)
	}
	return path
}

func TestProcessCVUploadAppliesParsedFields(t *testing.T) {
	svc, _ := newTestService(t)
	svc.CreateSession("sess-1")

	path := writeCV(t, "Dana Levi\n\ndana@example.com\n050-123-4567\n")

	res, err := svc.ProcessCVUpload("sess-1", "cv.txt", path, 512)
	if err != nil {
		t.Fatalf("ProcessCVUpload: %v", err)
	}
	if res.RequiresConfirmation {
		t.Error("no collision expected")
	}
	if res.Student.CVFile == nil || res.Student.CVFile.Filename != "cv.txt" {
		t.Error("cv file not attached")
	}
	if res.Student.Email != "dana@example.com" {
		t.Errorf("parsed email not applied: %q", res.Student.Email)
	}
	if res.Student.Phone != "050-123-4567" {
		t.Errorf("parsed phone not applied: %q", res.Student.Phone)
	}
	if res.Student.ChatStep != 2 {
		t.Errorf("chat step = %d, want 2", res.Student.ChatStep)
	}
}

func TestProcessCVUploadCollision(t *testing.T) {
	svc, store := newTestService(t)

	existing, _, _ := svc.CreateSession("old-sess")
	existing.Name = "Dana Levi"
	existing.Email = "dana@example.com"
	if err := store.UpdateStudent(existing); err != nil {
		t.Fatalf("seeding existing: %v", err)
	}
	svc.CreateSession("new-sess")

	path := writeCV(t, "Dana Levi\n\ndana@example.com\n")

	res, err := svc.ProcessCVUpload("new-sess", "cv.txt", path, 512)
	if err != nil {
		t.Fatalf("ProcessCVUpload: %v", err)
	}
	if !res.RequiresConfirmation {
		t.Fatal("collision should require confirmation")
	}
	if res.Existing == nil || res.Existing.ID != existing.ID {
		t.Errorf("existing match = %+v, want id %s", res.Existing, existing.ID)
	}
	// Parsed contact fields are held back until the candidate decides.
	if res.Student.Email != "" {
		t.Errorf("parsed email applied despite collision: %q", res.Student.Email)
	}
	// The upload itself still sticks.
	if res.Student.CVFile == nil {
		t.Error("cv file should be attached even on collision")
	}
}

func TestProcessCVUploadRejectsBadFile(t *testing.T) {
	svc, _ := newTestService(t)
	svc.CreateSession("sess-1")

	if _, err := svc.ProcessCVUpload("sess-1", "cv.exe", "/tmp/cv.exe", 512); !errors.Is(err, ErrValidation) {
		t.Errorf("bad extension: err = %v, want ErrValidation", err)
	}
	if _, err := svc.ProcessCVUpload("sess-1", "cv.pdf", "/tmp/cv.pdf", 100<<20); !errors.Is(err, ErrValidation) {
		t.Errorf("oversized: err = %v, want ErrValidation", err)
	}
}
