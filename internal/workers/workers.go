// Package workers runs the background side of the system: the archive
// build loop and the periodic invitation sweep.
package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"shootflow/internal/engine/artifacts"
	"shootflow/internal/platform/repositories"
)

// ArchiveWorker polls the download-artifact queue. Each tick recovers stuck
// jobs, claims at most one PENDING artifact, and processes it to completion
// before the next claim.
type ArchiveWorker struct {
	svc      *artifacts.Service
	interval time.Duration
}

func NewArchiveWorker(svc *artifacts.Service, interval time.Duration) *ArchiveWorker {
	return &ArchiveWorker{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled.
func (w *ArchiveWorker) Run(ctx context.Context) error {
	log.Info().Str("worker", w.svc.WorkerToken()).Dur("interval", w.interval).Msg("workers: archive loop starting")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("workers: archive loop stopping")
			return ctx.Err()
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *ArchiveWorker) tick() {
	res, err := w.svc.Tick(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("workers: tick failed")
		return
	}
	if res.Recovered > 0 {
		log.Warn().Int("recovered", res.Recovered).Msg("workers: requeued stuck artifacts")
	}
	if res.Claimed == nil {
		return
	}

	log.Info().Str("artifact_id", res.Claimed.ID).Str("project_id", res.Claimed.ProjectID).Msg("workers: processing artifact")
	if err := w.svc.Process(res.Claimed); err != nil {
		log.Error().Err(err).Str("artifact_id", res.Claimed.ID).Msg("workers: processing failed")
	}
}

// SweepExpiredInvitations deletes unaccepted invitations past their expiry.
// Scheduled via cron in the worker binary.
func SweepExpiredInvitations(invites *repositories.InvitationRepository) {
	n, err := invites.DeleteExpired(time.Now().Unix())
	if err != nil {
		log.Error().Err(err).Msg("workers: invitation sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("workers: swept expired invitations")
	}
}
