package storage

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// Named blobs persisted across restarts. App and auth state are stored
// and restored independently of each other.
const (
	KeyAppState  = "app_state"
	KeyAuthState = "auth_state"
)

// GetSetting loads a single setting value. The second return reports
// whether the key existed.
func (s *Store) GetSetting(key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrStoreClosed
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetSetting upserts a setting value. Empty value deletes the row.
func (s *Store) SetSetting(key, value string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SaveJSON serializes v and stores it under key.
func (s *Store) SaveJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SetSetting(key, string(data))
}

// LoadJSON loads and deserializes the blob under key into v. The first
// return reports whether the key existed.
func (s *Store) LoadJSON(key string, v any) (bool, error) {
	value, ok, err := s.GetSetting(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return false, err
	}
	return true, nil
}

// TouchSession records session activity for later inspection.
func (s *Store) TouchSession(sessionID string, messageCount int) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO session_log (session_id, started_at, last_active, message_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_active = excluded.last_active,
			message_count = excluded.message_count
	`, sessionID, now, now, messageCount)
	return err
}
