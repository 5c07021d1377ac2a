package storage

import (
	"time"
)

// SaveExposure inserts an exposure grant. Grants are normally written by the
// admin side; this method exists for seeding and tests.
func (s *Store) SaveExposure(e Exposure) error {
	_, err := s.db.Exec(`
		INSERT INTO exposures (id, user_id, student_id, is_active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.StudentID, e.IsActive, fmtTime(e.ExpiresAt), fmtTime(e.CreatedAt),
	)
	return err
}

// RevokeExposure deactivates a grant.
func (s *Store) RevokeExposure(id string) error {
	res, err := s.db.Exec("UPDATE exposures SET is_active = 0 WHERE id = ?", id)
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

// ActiveGrantIDs returns the set of student ids the viewer holds a live
// (active, non-expired) exposure grant for.
func (s *Store) ActiveGrantIDs(userID string, now time.Time) (map[string]bool, error) {
	rows, err := s.db.Query(
		"SELECT student_id FROM exposures WHERE user_id = ? AND is_active = 1 AND expires_at > ?",
		userID, fmtTime(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	granted := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		granted[id] = true
	}
	return granted, rows.Err()
}
