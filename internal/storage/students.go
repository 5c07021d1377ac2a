package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const studentColumns = `id, session_id, name, email, phone, is_active, replaced_by,
	institution, degree_field, current_degree, study_year, gpa,
	transcript_filename, transcript_path, transcript_uploaded_at,
	has_experience, experience_description, city, hours_per_week, flexible_hours,
	personal_statement, additional_info, special_roles, soft_skills, key_info,
	link_github, link_linkedin, link_portfolio,
	cv_filename, cv_path, cv_uploaded_at,
	profile_complete, terms_accepted, terms_accepted_at,
	chat_step, chat_completed, created_at, last_updated, last_accessed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Student, error) {
	var (
		st                           Student
		gpa                          sql.NullFloat64
		hasExp, flexHours            sql.NullInt64
		trFilename, trPath           string
		trUploaded                   sql.NullString
		cvFilename, cvPath           string
		cvUploaded                   sql.NullString
		termsAt                      sql.NullString
		createdAt, updated, accessed string
	)

	err := row.Scan(
		&st.ID, &st.SessionID, &st.Name, &st.Email, &st.Phone, &st.IsActive, &st.ReplacedBy,
		&st.Education.Institution, &st.Education.DegreeField, &st.Education.CurrentDegree, &st.Education.StudyYear, &gpa,
		&trFilename, &trPath, &trUploaded,
		&hasExp, &st.WorkExperience.Description, &st.Location.City, &st.Availability.HoursPerWeek, &flexHours,
		&st.PersonalStatement, &st.AdditionalInfo, &st.SpecialRoles, &st.SoftSkills, &st.KeyInfo,
		&st.Links.GitHub, &st.Links.LinkedIn, &st.Links.Portfolio,
		&cvFilename, &cvPath, &cvUploaded,
		&st.ProfileComplete, &st.TermsAccepted, &termsAt,
		&st.ChatStep, &st.ChatCompleted, &createdAt, &updated, &accessed,
	)
	if err == sql.ErrNoRows {
		return Student{}, ErrNotFound
	}
	if err != nil {
		return Student{}, err
	}

	st.Education.GPA = floatPtrFromNull(gpa)
	st.WorkExperience.HasExperience = boolPtrFromNull(hasExp)
	st.Availability.FlexibleHours = boolPtrFromNull(flexHours)

	if st.Education.Transcript, err = fileRefFromCols("transcript_uploaded_at", trFilename, trPath, trUploaded); err != nil {
		return Student{}, err
	}
	if st.CVFile, err = fileRefFromCols("cv_uploaded_at", cvFilename, cvPath, cvUploaded); err != nil {
		return Student{}, err
	}
	if st.TermsAcceptedAt, err = parseNullTime("terms_accepted_at", termsAt); err != nil {
		return Student{}, err
	}
	if st.CreatedAt, err = parseTimeCol("created_at", createdAt); err != nil {
		return Student{}, err
	}
	if st.LastUpdated, err = parseTimeCol("last_updated", updated); err != nil {
		return Student{}, err
	}
	if st.LastAccessed, err = parseTimeCol("last_accessed", accessed); err != nil {
		return Student{}, err
	}
	return st, nil
}

// fileRefFromCols assembles a FileRef from its three columns; a file is
// present iff its filename column is non-empty.
func fileRefFromCols(col, filename, path string, uploaded sql.NullString) (*FileRef, error) {
	if filename == "" {
		return nil, nil
	}
	ref := &FileRef{Filename: filename, Path: path}
	at, err := parseNullTime(col, uploaded)
	if err != nil {
		return nil, err
	}
	if at != nil {
		ref.UploadedAt = *at
	}
	return ref, nil
}

func fileRefCols(ref *FileRef) (filename, path string, uploaded any) {
	if ref == nil {
		return "", "", nil
	}
	return ref.Filename, ref.Path, fmtTime(ref.UploadedAt)
}

// studentArgs returns the column values for st in studentColumns order,
// excluding the leading id.
func studentArgs(st Student) []any {
	trFilename, trPath, trUploaded := fileRefCols(st.Education.Transcript)
	cvFilename, cvPath, cvUploaded := fileRefCols(st.CVFile)

	return []any{
		st.SessionID, st.Name, st.Email, st.Phone, st.IsActive, st.ReplacedBy,
		st.Education.Institution, st.Education.DegreeField, st.Education.CurrentDegree, st.Education.StudyYear, nullFloatArg(st.Education.GPA),
		trFilename, trPath, trUploaded,
		nullBoolArg(st.WorkExperience.HasExperience), st.WorkExperience.Description, st.Location.City, st.Availability.HoursPerWeek, nullBoolArg(st.Availability.FlexibleHours),
		st.PersonalStatement, st.AdditionalInfo, st.SpecialRoles, st.SoftSkills, st.KeyInfo,
		st.Links.GitHub, st.Links.LinkedIn, st.Links.Portfolio,
		cvFilename, cvPath, cvUploaded,
		st.ProfileComplete, st.TermsAccepted, fmtNullTime(st.TermsAcceptedAt),
		st.ChatStep, st.ChatCompleted, fmtTime(st.CreatedAt), fmtTime(st.LastUpdated), fmtTime(st.LastAccessed),
	}
}

// CreateStudent inserts a new student record.
func (s *Store) CreateStudent(st Student) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 39), ", ")
	args := append([]any{st.ID}, studentArgs(st)...)
	_, err := s.db.Exec(
		fmt.Sprintf("INSERT INTO students (%s) VALUES (%s)", studentColumns, placeholders),
		args...,
	)
	return err
}

// UpdateStudent rewrites the full row for st.ID.
func (s *Store) UpdateStudent(st Student) error {
	assignments := []string{
		"session_id = ?", "name = ?", "email = ?", "phone = ?", "is_active = ?", "replaced_by = ?",
		"institution = ?", "degree_field = ?", "current_degree = ?", "study_year = ?", "gpa = ?",
		"transcript_filename = ?", "transcript_path = ?", "transcript_uploaded_at = ?",
		"has_experience = ?", "experience_description = ?", "city = ?", "hours_per_week = ?", "flexible_hours = ?",
		"personal_statement = ?", "additional_info = ?", "special_roles = ?", "soft_skills = ?", "key_info = ?",
		"link_github = ?", "link_linkedin = ?", "link_portfolio = ?",
		"cv_filename = ?", "cv_path = ?", "cv_uploaded_at = ?",
		"profile_complete = ?", "terms_accepted = ?", "terms_accepted_at = ?",
		"chat_step = ?", "chat_completed = ?", "created_at = ?", "last_updated = ?", "last_accessed = ?",
	}
	args := append(studentArgs(st), st.ID)
	res, err := s.db.Exec(
		"UPDATE students SET "+strings.Join(assignments, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStudentByID fetches a student by primary key.
func (s *Store) GetStudentByID(id string) (Student, error) {
	row := s.db.QueryRow("SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	return scanStudent(row)
}

// GetStudentBySession fetches the student bound to a chat session token.
func (s *Store) GetStudentBySession(sessionID string) (Student, error) {
	row := s.db.QueryRow("SELECT "+studentColumns+" FROM students WHERE session_id = ?", sessionID)
	return scanStudent(row)
}

// TouchStudent updates last_accessed for active-session bookkeeping.
func (s *Store) TouchStudent(id string, at time.Time) error {
	res, err := s.db.Exec("UPDATE students SET last_accessed = ? WHERE id = ?", fmtTime(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindActiveByEmailOrPhone returns the first active student matching either
// the (case-folded) email or the exact phone, excluding excludeID. Both keys
// are optional; callers must not pass both empty.
func (s *Store) FindActiveByEmailOrPhone(email, phone, excludeID string) (Student, error) {
	var conds []string
	var args []any
	if email != "" {
		conds = append(conds, "email = ?")
		args = append(args, strings.ToLower(email))
	}
	if phone != "" {
		conds = append(conds, "phone = ?")
		args = append(args, phone)
	}
	if len(conds) == 0 {
		return Student{}, ErrNotFound
	}

	query := "SELECT " + studentColumns + " FROM students WHERE is_active = 1 AND (" + strings.Join(conds, " OR ") + ")"
	if excludeID != "" {
		query += " AND id != ?"
		args = append(args, excludeID)
	}
	query += " ORDER BY created_at ASC LIMIT 1"

	row := s.db.QueryRow(query, args...)
	return scanStudent(row)
}

// DeactivateExpiredSessions flips is_active off for sessions that never
// finished the chat and have been idle past cutoff. Returns the number of
// rows affected.
func (s *Store) DeactivateExpiredSessions(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE students SET is_active = 0, last_updated = ?
		WHERE is_active = 1 AND chat_completed = 0 AND created_at < ? AND last_accessed < ?`,
		fmtTime(time.Now()), fmtTime(cutoff), fmtTime(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListStudents returns one page of active students matching f plus the total
// match count.
func (s *Store) ListStudents(f StudentFilter) ([]Student, int, error) {
	where := []string{"is_active = 1"}
	var args []any

	switch f.Completed {
	case "all":
	case "false":
		where = append(where, "profile_complete = 0")
	default:
		where = append(where, "profile_complete = 1")
	}

	if f.Search != "" {
		pat := "%" + escapeLike(f.Search) + "%"
		where = append(where, `(name LIKE ? ESCAPE '\' OR institution LIKE ? ESCAPE '\' OR degree_field LIKE ? ESCAPE '\' OR city LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat, pat)
	}
	if f.GPAMin != nil {
		where = append(where, "gpa >= ?")
		args = append(args, *f.GPAMin)
	}
	if f.GPAMax != nil {
		where = append(where, "gpa <= ?")
		args = append(args, *f.GPAMax)
	}
	if f.HasExperience != nil {
		where = append(where, "has_experience = ?")
		args = append(args, nullBoolArg(f.HasExperience))
	}
	if f.Institution != "" {
		where = append(where, "institution = ?")
		args = append(args, f.Institution)
	}
	if f.DegreeField != "" {
		where = append(where, "degree_field = ?")
		args = append(args, f.DegreeField)
	}
	if f.CurrentDegree != "" {
		where = append(where, "current_degree = ?")
		args = append(args, f.CurrentDegree)
	}
	if f.HoursPerWeek != "" {
		where = append(where, "hours_per_week = ?")
		args = append(args, f.HoursPerWeek)
	}
	if f.StudyYear != "" {
		where = append(where, "study_year = ?")
		args = append(args, f.StudyYear)
	}
	if f.City != "" {
		where = append(where, `city LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.City)+"%")
	}
	if f.FlexibleHours != nil {
		where = append(where, "flexible_hours = ?")
		args = append(args, nullBoolArg(f.FlexibleHours))
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM students WHERE "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting students: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	query := "SELECT " + studentColumns + " FROM students WHERE " + whereSQL +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, st)
	}
	return results, total, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// Statistics reports pool-wide counts plus the five most recent signups.
func (s *Store) Statistics() (Stats, error) {
	var stats Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM students WHERE is_active = 1").Scan(&stats.Total); err != nil {
		return Stats{}, fmt.Errorf("counting active students: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM students WHERE is_active = 1 AND profile_complete = 1").Scan(&stats.Completed); err != nil {
		return Stats{}, fmt.Errorf("counting completed profiles: %w", err)
	}
	stats.InProgress = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(float64(stats.Completed)/float64(stats.Total)*100 + 0.5)
	}

	rows, err := s.db.Query("SELECT " + studentColumns + " FROM students WHERE is_active = 1 ORDER BY created_at DESC LIMIT 5")
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return Stats{}, err
		}
		stats.Recent = append(stats.Recent, st)
	}
	return stats, rows.Err()
}
