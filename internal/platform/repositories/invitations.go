package repositories

import (
	"database/sql"
	"time"

	"shootflow/internal/platform/models"
)

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const invitationColumns = `id, organization_id, email, role, token, invited_by, accepted, expires_at, created_at, updated_at`

func scanInvitation(s interface{ Scan(dest ...interface{}) error }) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := s.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy, &inv.Accepted, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) Create(inv *models.Invitation) error {
	_, err := r.db.Exec(`
		INSERT INTO invitations (id, organization_id, email, role, token, invited_by, accepted, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.OrganizationID, inv.Email, inv.Role, inv.Token, inv.InvitedBy, inv.Accepted, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	row := r.db.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)
	return scanInvitation(row)
}

func (r *InvitationRepository) GetByID(id string) (*models.Invitation, error) {
	row := r.db.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *InvitationRepository) List(orgID string) ([]*models.Invitation, error) {
	rows, err := r.db.Query(`SELECT `+invitationColumns+` FROM invitations WHERE organization_id = ? ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *InvitationRepository) MarkAcceptedTx(tx *sql.Tx, id string) error {
	_, err := tx.Exec(`UPDATE invitations SET accepted = 1, updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (r *InvitationRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM invitations WHERE id = ?`, id)
	return err
}

// DeleteExpired removes unaccepted invitations past their expiry. Called by
// the worker's scheduled sweep; returns the number of rows removed.
func (r *InvitationRepository) DeleteExpired(now int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM invitations WHERE accepted = 0 AND expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
