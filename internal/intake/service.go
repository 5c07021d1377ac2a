// Package intake implements the profile intake flow: session lifecycle, CV
// upload and verification, and the finalize-time merge/replace policy that
// reconciles a chat session's record with a previously registered profile.
package intake

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cvgo/cvgo/internal/mapping"
	"github.com/cvgo/cvgo/internal/storage"
)

var (
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks an email already claimed by a different active profile.
	ErrConflict = errors.New("conflict")
)

// StudentStore is the subset of the storage layer the intake flow needs.
type StudentStore interface {
	CreateStudent(st storage.Student) error
	UpdateStudent(st storage.Student) error
	GetStudentByID(id string) (storage.Student, error)
	GetStudentBySession(sessionID string) (storage.Student, error)
	TouchStudent(id string, at time.Time) error
	FindActiveByEmailOrPhone(email, phone, excludeID string) (storage.Student, error)
}

// Service drives the intake flow against a student store.
type Service struct {
	store  StudentStore
	tables *mapping.Tables
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. The mapping tables are shared and must not be
// mutated after construction.
func NewService(store StudentStore, tables *mapping.Tables) *Service {
	return &Service{
		store:  store,
		tables: tables,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// CreateSession returns the profile bound to sessionID, creating an empty
// skeleton when the session is new. The second return is true when a record
// was created.
func (s *Service) CreateSession(sessionID string) (storage.Student, bool, error) {
	if sessionID == "" {
		return storage.Student{}, false, fmt.Errorf("%w: empty session id", ErrValidation)
	}

	existing, err := s.store.GetStudentBySession(sessionID)
	if err == nil {
		if err := s.store.TouchStudent(existing.ID, s.now()); err != nil {
			return storage.Student{}, false, fmt.Errorf("touching session: %w", err)
		}
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Student{}, false, fmt.Errorf("loading session: %w", err)
	}

	now := s.now().UTC()
	st := storage.Student{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		IsActive:     true,
		ChatStep:     1,
		CreatedAt:    now,
		LastUpdated:  now,
		LastAccessed: now,
	}
	if err := s.store.CreateStudent(st); err != nil {
		return storage.Student{}, false, fmt.Errorf("creating session record: %w", err)
	}
	s.logger.Info("session created", "session_id", sessionID, "student_id", st.ID)
	return st, true, nil
}

// ResolveExisting finds at most one active profile matching email
// (case-insensitive) or phone, excluding excludeID. With neither key set it
// reports no match without touching the store.
func (s *Service) ResolveExisting(email, phone, excludeID string) (storage.Student, error) {
	return s.store.FindActiveByEmailOrPhone(email, phone, excludeID)
}
