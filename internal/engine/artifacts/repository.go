package artifacts

import (
	"database/sql"
	"time"

	"shootflow/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const artifactColumns = `id, project_id, requested_by, status, worker_token, processing_started_at, retry_count, archive_url, error_message, created_at, updated_at`

func scanArtifact(s interface{ Scan(dest ...interface{}) error }) (*models.DownloadArtifact, error) {
	a := &models.DownloadArtifact{}
	err := s.Scan(&a.ID, &a.ProjectID, &a.RequestedBy, &a.Status, &a.WorkerToken, &a.ProcessingStartedAt, &a.RetryCount, &a.ArchiveURL, &a.ErrorMessage, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *Repository) Create(a *models.DownloadArtifact) error {
	_, err := r.db.Exec(`
		INSERT INTO download_artifacts (id, project_id, requested_by, status, worker_token, processing_started_at, retry_count, archive_url, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProjectID, a.RequestedBy, a.Status, a.WorkerToken, a.ProcessingStartedAt, a.RetryCount, a.ArchiveURL, a.ErrorMessage, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *Repository) GetByID(id string) (*models.DownloadArtifact, error) {
	row := r.db.QueryRow(`SELECT `+artifactColumns+` FROM download_artifacts WHERE id = ?`, id)
	return scanArtifact(row)
}

func (r *Repository) ListByProject(projectID string) ([]*models.DownloadArtifact, error) {
	rows, err := r.db.Query(`SELECT `+artifactColumns+` FROM download_artifacts WHERE project_id = ? ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*models.DownloadArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// PeekPending returns the id of the oldest unclaimed PENDING artifact. The
// read is intentionally minimal: the claim step re-validates by primary key.
func (r *Repository) PeekPending() (string, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM download_artifacts
		WHERE status = 'PENDING' AND worker_token IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// TryClaim performs the conditional claim: a single-statement UPDATE guarded
// by id, status and an empty worker token. Zero rows affected means another
// worker won the race; that is a normal outcome, not an error.
func (r *Repository) TryClaim(id, workerToken string, now int64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE download_artifacts
		SET status = 'GENERATING', worker_token = ?, processing_started_at = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING' AND worker_token IS NULL
	`, workerToken, now, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListStuck returns GENERATING artifacts whose processing started before the
// cutoff.
func (r *Repository) ListStuck(cutoff int64) ([]*models.DownloadArtifact, error) {
	rows, err := r.db.Query(`
		SELECT `+artifactColumns+` FROM download_artifacts
		WHERE status = 'GENERATING' AND processing_started_at IS NOT NULL AND processing_started_at < ?
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*models.DownloadArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// ResetForRetry returns a stuck artifact to the queue with its retry count
// bumped.
func (r *Repository) ResetForRetry(id string) error {
	_, err := r.db.Exec(`
		UPDATE download_artifacts
		SET status = 'PENDING', worker_token = NULL, processing_started_at = NULL,
		    retry_count = retry_count + 1, updated_at = ?
		WHERE id = ?
	`, time.Now().Unix(), id)
	return err
}

func (r *Repository) MarkFailed(id, message string) error {
	_, err := r.db.Exec(`
		UPDATE download_artifacts
		SET status = 'FAILED', worker_token = NULL, processing_started_at = NULL,
		    error_message = ?, updated_at = ?
		WHERE id = ?
	`, message, time.Now().Unix(), id)
	return err
}

func (r *Repository) MarkReady(id, archiveURL string) error {
	_, err := r.db.Exec(`
		UPDATE download_artifacts
		SET status = 'READY', worker_token = NULL, processing_started_at = NULL,
		    archive_url = ?, updated_at = ?
		WHERE id = ?
	`, archiveURL, time.Now().Unix(), id)
	return err
}

// CountByStatus returns queue depth per status, for the metrics endpoint.
func (r *Repository) CountByStatus() (map[models.ArtifactStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM download_artifacts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ArtifactStatus]int)
	for rows.Next() {
		var status models.ArtifactStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
