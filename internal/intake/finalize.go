package intake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cvgo/cvgo/internal/storage"
	"github.com/cvgo/cvgo/internal/validate"
)

// NoExperienceSentinel is the chat answer meaning "no work experience". The
// answer text is stored verbatim either way; only the boolean flips.
const NoExperienceSentinel = "אין"

const maxFreeTextLen = 1000

// FieldSet carries the answers committed at finalize time. Nil means the
// field was not supplied and the record's current value stands; a merge only
// overwrites fields that are present here.
type FieldSet struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`

	Institution *string `json:"institution,omitempty"`
	DegreeField *string `json:"degreeField,omitempty"`
	DegreeLabel *string `json:"degreeLabel,omitempty"` // Hebrew button label
	StudyYear   *string `json:"studyYear,omitempty"`
	GPA         *string `json:"gpa,omitempty"` // raw answer, non-numeric maps to null

	ExperienceText *string `json:"experienceText,omitempty"`

	City          *string `json:"city,omitempty"`
	HoursLabel    *string `json:"hoursLabel,omitempty"` // Hebrew button label
	FlexibleHours *bool   `json:"flexibleHours,omitempty"`

	PersonalStatement *string `json:"personalStatement,omitempty"`
	AdditionalInfo    *string `json:"additionalInfo,omitempty"`
	SpecialRoles      *string `json:"specialRoles,omitempty"`
	SoftSkills        *string `json:"softSkills,omitempty"`
	KeyInfo           *string `json:"keyInfo,omitempty"`

	Links []string `json:"links,omitempty"` // slotted by hostname substring
}

// FinalizeResult is the outcome of FinalizeWithMerge.
type FinalizeResult struct {
	Student   storage.Student `json:"student"`
	WasMerged bool            `json:"wasMerged"`
}

// FinalizeWithMerge commits the session's answers as a complete profile.
// When the submitted email belongs to a different active profile, that
// profile absorbs the answers and the session record is deactivated with a
// forward pointer to it; otherwise the session record itself is completed.
// Session files always win on merge since they are the freshest uploads.
func (s *Service) FinalizeWithMerge(sessionID string, f FieldSet) (FinalizeResult, error) {
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return FinalizeResult{}, err
	}
	if err := validateFieldSet(f); err != nil {
		return FinalizeResult{}, err
	}

	email := session.Email
	if f.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*f.Email))
	}

	now := s.now().UTC()

	existing, err := s.store.FindActiveByEmailOrPhone(email, "", session.ID)
	switch {
	case err == nil:
		s.applyFieldSet(&existing, f)
		if session.CVFile != nil {
			existing.CVFile = session.CVFile
		}
		if session.Education.Transcript != nil {
			existing.Education.Transcript = session.Education.Transcript
		}
		existing.ProfileComplete = true
		existing.TermsAccepted = true
		existing.ChatCompleted = true
		existing.LastUpdated = now
		if err := s.store.UpdateStudent(existing); err != nil {
			return FinalizeResult{}, fmt.Errorf("updating existing profile: %w", err)
		}

		session.IsActive = false
		session.ReplacedBy = existing.ID
		session.ChatCompleted = true
		session.LastUpdated = now
		if err := s.store.UpdateStudent(session); err != nil {
			return FinalizeResult{}, fmt.Errorf("deactivating session record: %w", err)
		}

		s.logger.Info("session merged into existing profile",
			"session_student", session.ID, "existing_student", existing.ID)
		return FinalizeResult{Student: existing, WasMerged: true}, nil

	case errors.Is(err, storage.ErrNotFound):
		s.applyFieldSet(&session, f)
		session.Email = email
		session.ProfileComplete = true
		session.TermsAccepted = true
		session.TermsAcceptedAt = &now
		session.ChatCompleted = true
		session.LastUpdated = now
		if err := s.store.UpdateStudent(session); err != nil {
			return FinalizeResult{}, fmt.Errorf("completing session record: %w", err)
		}
		return FinalizeResult{Student: session, WasMerged: false}, nil

	default:
		return FinalizeResult{}, fmt.Errorf("resolving email collision: %w", err)
	}
}

// ReplaceWithSession keeps the session record and deactivates an existing
// profile the caller chose to discard, first backfilling name, email and
// phone the session record lacks. The inverse tie-break of the merge path:
// fill gaps only, never overwrite.
func (s *Service) ReplaceWithSession(sessionID, existingID string) (storage.Student, error) {
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return storage.Student{}, err
	}
	existing, err := s.store.GetStudentByID(existingID)
	if err != nil {
		return storage.Student{}, err
	}

	if session.Name == "" {
		session.Name = existing.Name
	}
	if session.Email == "" {
		session.Email = existing.Email
	}
	if session.Phone == "" {
		session.Phone = existing.Phone
	}

	now := s.now().UTC()
	existing.IsActive = false
	existing.ReplacedBy = session.ID
	existing.LastUpdated = now
	if err := s.store.UpdateStudent(existing); err != nil {
		return storage.Student{}, fmt.Errorf("deactivating replaced profile: %w", err)
	}

	session.LastUpdated = now
	if err := s.store.UpdateStudent(session); err != nil {
		return storage.Student{}, fmt.Errorf("updating session record: %w", err)
	}

	s.logger.Info("existing profile replaced by session",
		"session_student", session.ID, "replaced_student", existing.ID)
	return session, nil
}

func validateFieldSet(f FieldSet) error {
	if f.Email != nil && !validate.IsValidEmail(strings.TrimSpace(*f.Email)) {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, *f.Email)
	}
	if f.Phone != nil && !validate.IsValidIsraeliPhone(*f.Phone) {
		return fmt.Errorf("%w: invalid phone %q", ErrValidation, *f.Phone)
	}
	return nil
}

// applyFieldSet copies every present field onto st. Field presence is the
// pointer being non-nil; present fields overwrite.
func (s *Service) applyFieldSet(st *storage.Student, f FieldSet) {
	if f.Name != nil {
		st.Name = validate.CleanText(*f.Name, 100)
	}
	if f.Email != nil {
		st.Email = strings.ToLower(strings.TrimSpace(*f.Email))
	}
	if f.Phone != nil {
		st.Phone = validate.FormatIsraeliPhone(*f.Phone)
	}

	if f.Institution != nil {
		st.Education.Institution = validate.CleanText(*f.Institution, 200)
	}
	if f.DegreeField != nil {
		st.Education.DegreeField = validate.CleanText(*f.DegreeField, 200)
	}
	if f.DegreeLabel != nil {
		st.Education.CurrentDegree = s.tables.Degree(*f.DegreeLabel)
	}
	if f.StudyYear != nil {
		st.Education.StudyYear = validate.CleanText(*f.StudyYear, 50)
	}
	if f.GPA != nil {
		st.Education.GPA = parseGPA(*f.GPA)
	}

	if f.ExperienceText != nil {
		answered := strings.TrimSpace(*f.ExperienceText) != NoExperienceSentinel
		st.WorkExperience.HasExperience = &answered
		st.WorkExperience.Description = validate.CleanText(*f.ExperienceText, maxFreeTextLen)
	}

	if f.City != nil {
		st.Location.City = validate.CleanText(*f.City, 100)
	}
	if f.HoursLabel != nil {
		st.Availability.HoursPerWeek = s.tables.Hours(*f.HoursLabel)
	}
	if f.FlexibleHours != nil {
		st.Availability.FlexibleHours = f.FlexibleHours
	}

	if f.PersonalStatement != nil {
		st.PersonalStatement = validate.CleanText(*f.PersonalStatement, maxFreeTextLen)
	}
	if f.AdditionalInfo != nil {
		st.AdditionalInfo = validate.CleanText(*f.AdditionalInfo, maxFreeTextLen)
	}
	if f.SpecialRoles != nil {
		st.SpecialRoles = validate.CleanText(*f.SpecialRoles, maxFreeTextLen)
	}
	if f.SoftSkills != nil {
		st.SoftSkills = validate.CleanText(*f.SoftSkills, maxFreeTextLen)
	}
	if f.KeyInfo != nil {
		st.KeyInfo = validate.CleanText(*f.KeyInfo, maxFreeTextLen)
	}

	for _, link := range f.Links {
		link = strings.TrimSpace(link)
		if link == "" || link == NoExperienceSentinel || !validate.IsValidURL(link) {
			continue
		}
		switch {
		case strings.Contains(link, "github.com"):
			st.Links.GitHub = link
		case strings.Contains(link, "linkedin.com"):
			st.Links.LinkedIn = link
		default:
			st.Links.Portfolio = link
		}
	}
}

// parseGPA maps non-numeric or missing input to nil, never to zero.
func parseGPA(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NoExperienceSentinel {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		return nil
	}
	return &v
}
