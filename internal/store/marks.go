package store

import (
	"database/sql"
	"fmt"
	"time"
)

// MarkRead records when a conversation was last opened. Satisfies
// core.ReadMarker.
func (s *Store) MarkRead(conversationID string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO read_marks (conversation_id, last_read_at)
		VALUES (?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			last_read_at = excluded.last_read_at
	`, conversationID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// LastRead returns when a conversation was last opened, or the zero time
// when it never was.
func (s *Store) LastRead(conversationID string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(
		"SELECT last_read_at FROM read_marks WHERE conversation_id = ?", conversationID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query read mark: %w", err)
	}
	return at, nil
}
