package intake

import (
	"github.com/cvgo/cvgo/internal/scoring"
	"github.com/cvgo/cvgo/internal/storage"
)

// SessionSummary is the candidate-facing snapshot of their own record.
type SessionSummary struct {
	Student storage.Student `json:"student"`
	Score   int             `json:"completionScore"`
	Step    int             `json:"currentStep"`
	Tips    []string        `json:"tips,omitempty"`
}

// Summary returns the session's record with its completion score and tips for
// whatever is still missing.
func (s *Service) Summary(sessionID string) (SessionSummary, error) {
	session, err := s.store.GetStudentBySession(sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	if err := s.store.TouchStudent(session.ID, s.now()); err != nil {
		s.logger.Warn("touching session failed", "session_id", sessionID, "error", err)
	}
	return SessionSummary{
		Student: session,
		Score:   scoring.Score(&session),
		Step:    session.ChatStep,
		Tips:    CompletionTips(&session),
	}, nil
}

// CompletionTips lists what is still missing from a profile, one suggestion
// per scoring category, in the chat's language.
func CompletionTips(st *storage.Student) []string {
	var tips []string

	if st.Name == "" || st.Email == "" || st.Phone == "" {
		tips = append(tips, "השלימו שם, אימייל וטלפון ליצירת קשר")
	}
	if st.Education.Institution == "" || st.Education.CurrentDegree == "" {
		tips = append(tips, "הוסיפו את פרטי הלימודים שלכם")
	} else if st.Education.GPA == nil {
		tips = append(tips, "הוסיפו ממוצע ציונים")
	}
	if st.CVFile == nil {
		tips = append(tips, "העלו קובץ קורות חיים")
	}
	if st.Education.Transcript == nil {
		tips = append(tips, "העלו גיליון ציונים")
	}
	if st.WorkExperience.HasExperience == nil {
		tips = append(tips, "ספרו לנו על ניסיון תעסוקתי קודם")
	}
	if st.Location.City == "" || st.Availability.HoursPerWeek == "" {
		tips = append(tips, "עדכנו עיר מגורים ושעות זמינות")
	}
	if st.PersonalStatement == "" {
		tips = append(tips, "כתבו כמה מילים על עצמכם")
	}

	return tips
}
