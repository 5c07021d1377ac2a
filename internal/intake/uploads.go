package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cvgo/cvgo/internal/cvparse"
	"github.com/cvgo/cvgo/internal/scoring"
	"github.com/cvgo/cvgo/internal/storage"
	"github.com/cvgo/cvgo/internal/validate"
)

var (
	cvExtensions         = []string{"pdf", "doc", "docx", "txt"}
	transcriptExtensions = []string{"pdf", "jpg", "jpeg", "png"}
)

// ExistingMatch summarizes a previously registered profile discovered during
// CV upload, shown to the candidate before they choose merge or replace.
type ExistingMatch struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Score int    `json:"completionScore"`
}

// CVUploadResult reports what the CV parser recovered and whether a collision
// with an existing profile needs the candidate's confirmation.
type CVUploadResult struct {
	Student              storage.Student `json:"student"`
	Parsed               *cvparse.Parsed `json:"parsed"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
	Existing             *ExistingMatch  `json:"existing,omitempty"`
}

// ProcessCVUpload attaches an uploaded CV to the session's record and applies
// whatever contact details the parser recovered. If the parsed email or phone
// belongs to another active profile, the parsed fields are held back and the
// result asks for confirmation instead.
func (s *Service) ProcessCVUpload(sessionID, filename, path string, size int64) (CVUploadResult, error) {
	if err := validate.ValidateUpload(filename, size, cvExtensions); err != nil {
		return CVUploadResult{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return CVUploadResult{}, err
	}

	parsed, err := cvparse.ParseFile(path)
	if err != nil {
		// Best effort: an unreadable file still counts as an upload.
		s.logger.Warn("cv parsing failed", "session_id", sessionID, "error", err)
		parsed = &cvparse.Parsed{Confidence: map[string]float64{}}
	}

	now := s.now().UTC()
	session.CVFile = &storage.FileRef{Filename: filename, Path: path, UploadedAt: now}
	session.LastUpdated = now
	session.LastAccessed = now

	existing, err := s.store.FindActiveByEmailOrPhone(parsed.Email, parsed.Phone, session.ID)
	switch {
	case err == nil:
		if err := s.store.UpdateStudent(session); err != nil {
			return CVUploadResult{}, fmt.Errorf("saving cv reference: %w", err)
		}
		return CVUploadResult{
			Student:              session,
			Parsed:               parsed,
			RequiresConfirmation: true,
			Existing: &ExistingMatch{
				ID:    existing.ID,
				Name:  existing.Name,
				Email: existing.Email,
				Score: scoring.Score(&existing),
			},
		}, nil

	case errors.Is(err, storage.ErrNotFound):
		if parsed.Name != "" && session.Name == "" {
			session.Name = validate.CleanText(parsed.Name, 100)
		}
		if parsed.Email != "" {
			session.Email = parsed.Email
		}
		if parsed.Phone != "" {
			session.Phone = parsed.Phone
		}
		if session.ChatStep < 2 {
			session.ChatStep = 2
		}
		if err := s.store.UpdateStudent(session); err != nil {
			return CVUploadResult{}, fmt.Errorf("saving parsed cv data: %w", err)
		}
		return CVUploadResult{Student: session, Parsed: parsed}, nil

	default:
		return CVUploadResult{}, fmt.Errorf("checking parsed identity: %w", err)
	}
}

// Corrections are the candidate's fixes to parsed CV data. Nil keeps the
// current value.
type Corrections struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// VerifyParsedData applies the candidate's corrections to the contact fields
// extracted from the CV. A corrected email that belongs to another active
// profile is rejected with ErrConflict so the caller can offer merge/replace.
func (s *Service) VerifyParsedData(sessionID string, c Corrections) (storage.Student, error) {
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return storage.Student{}, err
	}

	if c.Name != nil {
		session.Name = validate.CleanText(*c.Name, 100)
	}
	if c.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*c.Email))
		if !validate.IsValidEmail(email) {
			return storage.Student{}, fmt.Errorf("%w: invalid email %q", ErrValidation, *c.Email)
		}
		if _, err := s.store.FindActiveByEmailOrPhone(email, "", session.ID); err == nil {
			return storage.Student{}, fmt.Errorf("%w: email %s belongs to another profile", ErrConflict, email)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return storage.Student{}, fmt.Errorf("checking email: %w", err)
		}
		session.Email = email
	}
	if c.Phone != nil {
		if !validate.IsValidIsraeliPhone(*c.Phone) {
			return storage.Student{}, fmt.Errorf("%w: invalid phone %q", ErrValidation, *c.Phone)
		}
		session.Phone = validate.FormatIsraeliPhone(*c.Phone)
	}

	if session.ChatStep < 3 {
		session.ChatStep = 3
	}
	session.LastUpdated = s.now().UTC()
	if err := s.store.UpdateStudent(session); err != nil {
		return storage.Student{}, fmt.Errorf("saving verified data: %w", err)
	}
	return session, nil
}

// ProcessTranscriptUpload attaches an uploaded grade transcript to the
// session's education record.
func (s *Service) ProcessTranscriptUpload(sessionID, filename, path string, size int64) (storage.Student, error) {
	if err := validate.ValidateUpload(filename, size, transcriptExtensions); err != nil {
		return storage.Student{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return storage.Student{}, err
	}

	now := s.now().UTC()
	session.Education.Transcript = &storage.FileRef{Filename: filename, Path: path, UploadedAt: now}
	session.LastUpdated = now
	if err := s.store.UpdateStudent(session); err != nil {
		return storage.Student{}, fmt.Errorf("saving transcript reference: %w", err)
	}
	return session, nil
}
