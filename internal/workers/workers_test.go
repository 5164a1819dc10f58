package workers

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"shootflow/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE invitations (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		invited_by TEXT NOT NULL,
		accepted INTEGER NOT NULL DEFAULT 0,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSweepExpiredInvitations(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now().Unix()
	rows := []struct {
		id        string
		accepted  int
		expiresAt int64
	}{
		{"inv_live", 0, now + 3600},
		{"inv_expired", 0, now - 3600},
		{"inv_accepted_old", 1, now - 3600},
	}
	for _, r := range rows {
		if _, err := db.Exec(`
			INSERT INTO invitations (id, organization_id, email, role, token, invited_by, accepted, expires_at, created_at, updated_at)
			VALUES (?, 'org_1', ? || '@example.com', 'EDITOR', 'tok_' || ?, 'usr_1', ?, ?, 100, 100)
		`, r.id, r.id, r.id, r.accepted, r.expiresAt); err != nil {
			t.Fatalf("failed to insert invitation: %v", err)
		}
	}

	SweepExpiredInvitations(repositories.NewInvitationRepository(db))

	var remaining []string
	rs, err := db.Query(`SELECT id FROM invitations ORDER BY id`)
	if err != nil {
		t.Fatalf("failed to query invitations: %v", err)
	}
	defer rs.Close()
	for rs.Next() {
		var id string
		if err := rs.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		remaining = append(remaining, id)
	}

	if len(remaining) != 2 {
		t.Fatalf("remaining invitations = %v, want the live and accepted ones", remaining)
	}
	for _, id := range remaining {
		if id == "inv_expired" {
			t.Error("expired pending invitation should have been deleted")
		}
	}
}
