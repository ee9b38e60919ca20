package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SavedSession is the persisted login, restored on the next launch so the
// user lands back in the app without re-entering a token.
type SavedSession struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	Token       string
	SavedAt     time.Time
}

// SaveSession replaces the stored login.
func (s *Store) SaveSession(sess SavedSession) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, user_id, display_name, avatar_url, token, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			token = excluded.token,
			saved_at = excluded.saved_at
	`, sess.UserID, sess.DisplayName, sess.AvatarURL, sess.Token, sess.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored login, or (nil, nil) when none is saved.
func (s *Store) LoadSession() (*SavedSession, error) {
	var sess SavedSession
	err := s.db.QueryRow(`
		SELECT user_id, display_name, avatar_url, token, saved_at
		FROM session WHERE id = 1
	`).Scan(&sess.UserID, &sess.DisplayName, &sess.AvatarURL, &sess.Token, &sess.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &sess, nil
}

// ClearSession drops the stored login, e.g. after an auth failure.
func (s *Store) ClearSession() error {
	_, err := s.db.Exec("DELETE FROM session WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
