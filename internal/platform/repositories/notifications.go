package repositories

import (
	"database/sql"

	"shootflow/internal/platform/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, organization_id, project_id, kind, role, body, read, created_at`

func scanNotification(s interface{ Scan(dest ...interface{}) error }) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.Scan(&n.ID, &n.UserID, &n.OrganizationID, &n.ProjectID, &n.Kind, &n.Role, &n.Body, &n.Read, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// Create inserts a notification. Duplicates on the (user, project, kind,
// role) dedup key are ignored so re-running an assignment never produces a
// second notification.
func (r *NotificationRepository) Create(n *models.Notification) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO notifications (id, user_id, organization_id, project_id, kind, role, body, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.OrganizationID, n.ProjectID, n.Kind, n.Role, n.Body, n.Read, n.CreatedAt)
	return err
}

func (r *NotificationRepository) ListForUser(userID, orgID string, limit, offset int) ([]*models.Notification, error) {
	rows, err := r.db.Query(`
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ? AND organization_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(id, userID string) error {
	_, err := r.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (r *NotificationRepository) MarkAllRead(userID, orgID string) error {
	_, err := r.db.Exec(`UPDATE notifications SET read = 1 WHERE user_id = ? AND organization_id = ?`, userID, orgID)
	return err
}

func (r *NotificationRepository) CountUnread(userID, orgID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND organization_id = ? AND read = 0`, userID, orgID).Scan(&n)
	return n, err
}
