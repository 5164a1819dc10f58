// Package availability answers whether a technician can take a shoot at a
// given time, based on their working window and explicit busy blocks.
package availability

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

var errInvalidWindow = fmt.Errorf("%w: block end must be after start", errors.ErrInvalid)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetSettings(userID string) (*models.AvailabilitySetting, error) {
	s := &models.AvailabilitySetting{}
	var daysRaw []byte
	err := r.db.QueryRow(`
		SELECT user_id, auto_decline_bookings, work_start_minute, work_end_minute, working_days, updated_at
		FROM availability_settings WHERE user_id = ?
	`, userID).Scan(&s.UserID, &s.AutoDeclineBookings, &s.WorkStartMinute, &s.WorkEndMinute, &daysRaw, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(daysRaw) > 0 {
		if err := json.Unmarshal(daysRaw, &s.WorkingDays); err != nil {
			return nil, fmt.Errorf("corrupt working_days for user %s: %w", userID, err)
		}
	}
	return s, nil
}

func (r *Repository) UpsertSettings(s *models.AvailabilitySetting) error {
	daysJSON, err := json.Marshal(s.WorkingDays)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO availability_settings (user_id, auto_decline_bookings, work_start_minute, work_end_minute, working_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			auto_decline_bookings = excluded.auto_decline_bookings,
			work_start_minute = excluded.work_start_minute,
			work_end_minute = excluded.work_end_minute,
			working_days = excluded.working_days,
			updated_at = excluded.updated_at
	`, s.UserID, s.AutoDeclineBookings, s.WorkStartMinute, s.WorkEndMinute, string(daysJSON), s.UpdatedAt)
	return err
}

func (r *Repository) CreateBlock(b *models.AvailabilityBlock) error {
	_, err := r.db.Exec(`
		INSERT INTO availability_blocks (id, user_id, start_time, end_time, reason)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.UserID, b.StartTime, b.EndTime, b.Reason)
	return err
}

func (r *Repository) DeleteBlock(id, userID string) error {
	_, err := r.db.Exec(`DELETE FROM availability_blocks WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

// OverlappingBlock returns one busy block overlapping [t, t), or nil.
func (r *Repository) OverlappingBlock(userID string, t int64) (*models.AvailabilityBlock, error) {
	b := &models.AvailabilityBlock{}
	err := r.db.QueryRow(`
		SELECT id, user_id, start_time, end_time, reason
		FROM availability_blocks
		WHERE user_id = ? AND start_time <= ? AND end_time > ?
		LIMIT 1
	`, userID, t, t).Scan(&b.ID, &b.UserID, &b.StartTime, &b.EndTime, &b.Reason)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Result is the answer to an availability probe.
type Result struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// IsUserAvailableAt checks the working window and busy blocks for the user
// at time t. A user with no settings row is treated as always available.
func (s *Service) IsUserAvailableAt(userID string, t int64) (*Result, error) {
	settings, err := s.repo.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	if settings != nil {
		at := time.Unix(t, 0).UTC()
		if len(settings.WorkingDays) > 0 {
			working := false
			for _, d := range settings.WorkingDays {
				if int(at.Weekday()) == d {
					working = true
					break
				}
			}
			if !working {
				return &Result{Available: false, Reason: "outside working days"}, nil
			}
		}
		minute := at.Hour()*60 + at.Minute()
		if settings.WorkEndMinute > settings.WorkStartMinute &&
			(minute < settings.WorkStartMinute || minute >= settings.WorkEndMinute) {
			return &Result{Available: false, Reason: "outside working hours"}, nil
		}
	}

	block, err := s.repo.OverlappingBlock(userID, t)
	if err != nil {
		return nil, err
	}
	if block != nil {
		reason := block.Reason
		if reason == "" {
			reason = "busy"
		}
		return &Result{Available: false, Reason: reason}, nil
	}

	return &Result{Available: true}, nil
}

// GetUserAvailability exposes the raw settings, including the auto-decline
// flag consulted by technician assignment.
func (s *Service) GetUserAvailability(userID string) (*models.AvailabilitySetting, error) {
	return s.repo.GetSettings(userID)
}

func (s *Service) UpdateSettings(setting *models.AvailabilitySetting) error {
	setting.UpdatedAt = time.Now().Unix()
	return s.repo.UpsertSettings(setting)
}

func (s *Service) AddBlock(b *models.AvailabilityBlock) error {
	if b.EndTime <= b.StartTime {
		return errInvalidWindow
	}
	return s.repo.CreateBlock(b)
}

func (s *Service) RemoveBlock(id, userID string) error {
	return s.repo.DeleteBlock(id, userID)
}
