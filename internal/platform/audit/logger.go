// Package audit appends an operational trail for sensitive mutations (role
// changes, project deletion, delivery-token regeneration). Writes are
// best-effort and never fail the caller.
package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Entry struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	UserID         string                 `json:"user_id"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Record appends an audit row. Actor and org are passed explicitly rather
// than dug out of a request context.
func (l *Logger) Record(orgID, userID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	metaJSON, _ := json.Marshal(metadata)

	_, err := l.db.Exec(`
		INSERT INTO audit_logs (id, organization_id, user_id, action, resource_type, resource_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, "audit_"+uuid.New().String(), orgID, userID, action, resourceType, resourceID, string(metaJSON), time.Now().Unix())
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit: append failed")
	}
}

// List returns the most recent entries for an organization.
func (l *Logger) List(orgID string, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, organization_id, user_id, action, resource_type, resource_id, metadata, created_at
		FROM audit_logs WHERE organization_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var metaRaw []byte
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID, &metaRaw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaRaw) > 0 {
			json.Unmarshal(metaRaw, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
