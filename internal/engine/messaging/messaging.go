// Package messaging implements project chat. Two channels per project: TEAM
// for internal coordination and CUSTOMER for the client-facing thread.
// Messages are append-only with one level of threaded replies.
package messaging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const messageColumns = `id, project_id, sender_id, channel, thread_id, body, created_at`

func scanMessage(s interface{ Scan(dest ...interface{}) error }) (*models.Message, error) {
	m := &models.Message{}
	err := s.Scan(&m.ID, &m.ProjectID, &m.SenderID, &m.Channel, &m.ThreadID, &m.Body, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *Repository) Create(m *models.Message) error {
	_, err := r.db.Exec(`
		INSERT INTO messages (id, project_id, sender_id, channel, thread_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ProjectID, m.SenderID, m.Channel, m.ThreadID, m.Body, m.CreatedAt)
	return err
}

func (r *Repository) GetByID(id string) (*models.Message, error) {
	row := r.db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

func (r *Repository) ListChannel(projectID string, channel models.ChatChannel) ([]*models.Message, error) {
	rows, err := r.db.Query(`
		SELECT `+messageColumns+` FROM messages
		WHERE project_id = ? AND channel = ?
		ORDER BY created_at ASC
	`, projectID, channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

type Service struct {
	repo        *Repository
	projectRepo *projects.Repository
	customers   *repositories.CustomerRepository
}

func NewService(repo *Repository, projectRepo *projects.Repository, customers *repositories.CustomerRepository) *Service {
	return &Service{repo: repo, projectRepo: projectRepo, customers: customers}
}

type PostInput struct {
	Channel  models.ChatChannel `json:"channel"`
	ThreadID *string            `json:"thread_id"`
	Body     string             `json:"body"`
}

func (s *Service) Post(ctx *orgctx.Context, projectID string, in *PostInput) (*models.Message, error) {
	if !in.Channel.Valid() {
		return nil, fmt.Errorf("%w: unknown channel %q", errors.ErrInvalid, in.Channel)
	}
	if in.Body == "" {
		return nil, fmt.Errorf("%w: message body is required", errors.ErrInvalid)
	}

	p, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}

	if !authz.CanPostMessage(ctx, p, in.Channel) {
		return nil, fmt.Errorf("%w: cannot post to this channel", errors.ErrForbidden)
	}

	if in.ThreadID != nil {
		parent, err := s.repo.GetByID(*in.ThreadID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.ProjectID != projectID || parent.Channel != in.Channel {
			return nil, fmt.Errorf("%w: thread parent", errors.ErrNotFound)
		}
		// One level of threading: replies to a reply attach to its root.
		if parent.ThreadID != nil {
			in.ThreadID = parent.ThreadID
		}
	}

	m := &models.Message{
		ID:        "msg_" + uuid.NewString(),
		ProjectID: projectID,
		SenderID:  ctx.User.ID,
		Channel:   in.Channel,
		ThreadID:  in.ThreadID,
		Body:      in.Body,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListChannel(ctx *orgctx.Context, projectID string, channel models.ChatChannel) ([]*models.Message, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: unknown channel %q", errors.ErrInvalid, channel)
	}

	p, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}

	linked, err := s.isLinkedCustomer(ctx, p)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadChannel(ctx, p, channel, linked) {
		return nil, fmt.Errorf("%w: cannot read this channel", errors.ErrForbidden)
	}

	return s.repo.ListChannel(projectID, channel)
}

func (s *Service) isLinkedCustomer(ctx *orgctx.Context, p *models.Project) (bool, error) {
	if p.CustomerID == nil {
		return false, nil
	}
	customer, err := s.customers.GetByOrgAndUser(p.OrganizationID, ctx.User.ID)
	if err != nil {
		return false, err
	}
	return customer != nil && customer.ID == *p.CustomerID, nil
}
