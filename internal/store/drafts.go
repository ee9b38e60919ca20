package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveDraft stores the unsent input for a conversation. An empty body
// removes the draft instead of storing blank text.
func (s *Store) SaveDraft(conversationID, body string) error {
	if body == "" {
		return s.DeleteDraft(conversationID)
	}
	_, err := s.db.Exec(`
		INSERT INTO drafts (conversation_id, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, conversationID, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Draft returns the stored input for a conversation, or "" when there is
// none.
func (s *Store) Draft(conversationID string) (string, error) {
	var body string
	err := s.db.QueryRow(
		"SELECT body FROM drafts WHERE conversation_id = ?", conversationID,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query draft: %w", err)
	}
	return body, nil
}

// DeleteDraft removes the stored input for a conversation.
func (s *Store) DeleteDraft(conversationID string) error {
	_, err := s.db.Exec("DELETE FROM drafts WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
