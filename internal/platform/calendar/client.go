// Package calendar talks to the calendar bridge that mirrors scheduled
// shoots into technician calendars. Every call is best-effort: callers fire
// it in a goroutine and failures are logged, never propagated.
package calendar

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"shootflow/internal/platform/config"
)

// Syncer is what the project service depends on; tests swap in a recorder.
type Syncer interface {
	SyncProjectToCalendar(projectID, userID string, scheduledTime int64)
	RemoveProjectFromCalendar(projectID, userID string)
}

type Client struct {
	cfg    config.CalendarConfig
	client *http.Client
}

func NewClient(cfg config.CalendarConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type eventPayload struct {
	ProjectID     string `json:"project_id"`
	UserID        string `json:"user_id"`
	ScheduledTime int64  `json:"scheduled_time,omitempty"`
}

func (c *Client) SyncProjectToCalendar(projectID, userID string, scheduledTime int64) {
	c.post("/events/sync", eventPayload{ProjectID: projectID, UserID: userID, ScheduledTime: scheduledTime})
}

func (c *Client) RemoveProjectFromCalendar(projectID, userID string) {
	c.post("/events/remove", eventPayload{ProjectID: projectID, UserID: userID})
}

func (c *Client) post(path string, payload eventPayload) {
	if !c.cfg.Enabled {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", c.cfg.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		log.Warn().Err(err).Str("project_id", payload.ProjectID).Msg("calendar: building request failed")
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shootflow-Signature", signPayload(c.cfg.Secret, body))

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("project_id", payload.ProjectID).Msg("calendar: request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().
			Str("project_id", payload.ProjectID).
			Str("status", fmt.Sprintf("HTTP %d", resp.StatusCode)).
			Msg("calendar: bridge rejected event")
	}
}

func signPayload(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
