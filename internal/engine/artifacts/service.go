// Package artifacts implements the download-artifact queue: requests to
// materialize a downloadable bundle for a project, claimed at most once by a
// background worker via a conditional single-row update.
package artifacts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

const (
	// StuckTimeout is how long an artifact may sit in GENERATING before it
	// is presumed abandoned.
	StuckTimeout = 5 * time.Minute
	// MaxRetries bounds recovery attempts; past it the artifact fails
	// terminally.
	MaxRetries = 3
)

// Generator produces the archive for a claimed artifact. The production
// implementation zips the project's media out of storage; tests stub it.
type Generator interface {
	Generate(a *models.DownloadArtifact) (archiveURL string, err error)
}

type Service struct {
	repo         *Repository
	projectRepo  *projects.Repository
	generator    Generator
	workerToken  string
	stuckTimeout time.Duration
	maxRetries   int
}

func NewService(repo *Repository, projectRepo *projects.Repository, gen Generator) *Service {
	return &Service{
		repo:         repo,
		projectRepo:  projectRepo,
		generator:    gen,
		workerToken:  "wrk_" + uuid.NewString(),
		stuckTimeout: StuckTimeout,
		maxRetries:   MaxRetries,
	}
}

// WorkerToken identifies this worker instance in claims.
func (s *Service) WorkerToken() string {
	return s.workerToken
}

// SetLimits overrides the stuck timeout and retry bound from config.
func (s *Service) SetLimits(stuckTimeout time.Duration, maxRetries int) {
	if stuckTimeout > 0 {
		s.stuckTimeout = stuckTimeout
	}
	if maxRetries > 0 {
		s.maxRetries = maxRetries
	}
}

// Request creates a PENDING artifact for a project the caller can view.
func (s *Service) Request(ctx *orgctx.Context, projectID string) (*models.DownloadArtifact, error) {
	p, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if !authz.CanViewProject(ctx, p) {
		return nil, fmt.Errorf("%w: no access to this project", errors.ErrForbidden)
	}

	now := time.Now().Unix()
	a := &models.DownloadArtifact{
		ID:          "art_" + uuid.NewString(),
		ProjectID:   p.ID,
		RequestedBy: ctx.User.ID,
		Status:      models.ArtifactPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns a project's artifacts for a caller who can view it.
func (s *Service) List(ctx *orgctx.Context, projectID string) ([]*models.DownloadArtifact, error) {
	p, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if !authz.CanViewProject(ctx, p) {
		return nil, fmt.Errorf("%w: no access to this project", errors.ErrForbidden)
	}
	return s.repo.ListByProject(projectID)
}

// Recover resets stuck GENERATING artifacts. Under the retry limit they go
// back to PENDING with retry_count bumped; at the limit they fail
// terminally. Returns how many were returned to the queue.
func (s *Service) Recover(now time.Time) (int, error) {
	cutoff := now.Add(-s.stuckTimeout).Unix()
	stuck, err := s.repo.ListStuck(cutoff)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, a := range stuck {
		if a.RetryCount < s.maxRetries {
			if err := s.repo.ResetForRetry(a.ID); err != nil {
				log.Error().Err(err).Str("artifact_id", a.ID).Msg("artifacts: recovery reset failed")
				continue
			}
			recovered++
			log.Info().Str("artifact_id", a.ID).Int("retry_count", a.RetryCount+1).Msg("artifacts: recovered stuck artifact")
		} else {
			if err := s.repo.MarkFailed(a.ID, "generation timed out after maximum retries"); err != nil {
				log.Error().Err(err).Str("artifact_id", a.ID).Msg("artifacts: marking failed artifact failed")
				continue
			}
			log.Warn().Str("artifact_id", a.ID).Msg("artifacts: retries exhausted, artifact failed")
		}
	}
	return recovered, nil
}

// Claim attempts to take exactly one pending artifact. A nil return with a
// nil error means nothing was claimable this tick — either the queue is
// empty or another worker won the race for the peeked row.
func (s *Service) Claim(now time.Time) (*models.DownloadArtifact, error) {
	id, err := s.repo.PeekPending()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	won, err := s.repo.TryClaim(id, s.workerToken, now.Unix())
	if err != nil {
		return nil, err
	}
	if !won {
		// Another worker claimed the peeked row between our read and
		// update. The next poll tick will find a different candidate.
		return nil, nil
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a != nil {
		a.Project, err = s.projectRepo.GetByID(a.ProjectID)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// TickResult reports what one poll cycle did.
type TickResult struct {
	Recovered int
	Claimed   *models.DownloadArtifact
}

// Tick runs one poll cycle: recovery always precedes the claim attempt.
func (s *Service) Tick(now time.Time) (*TickResult, error) {
	recovered, err := s.Recover(now)
	if err != nil {
		return nil, err
	}

	claimed, err := s.Claim(now)
	if err != nil {
		return &TickResult{Recovered: recovered}, err
	}
	return &TickResult{Recovered: recovered, Claimed: claimed}, nil
}

// Process generates the archive for a claimed artifact and records the
// outcome. Generation errors requeue the artifact until the retry bound is
// reached; only then does it fail terminally.
func (s *Service) Process(a *models.DownloadArtifact) error {
	url, err := s.generator.Generate(a)
	if err != nil {
		if a.RetryCount < s.maxRetries {
			log.Warn().Err(err).Str("artifact_id", a.ID).Int("retry_count", a.RetryCount+1).Msg("artifacts: generation failed, requeued")
			return s.repo.ResetForRetry(a.ID)
		}
		log.Error().Err(err).Str("artifact_id", a.ID).Msg("artifacts: generation failed, retries exhausted")
		return s.repo.MarkFailed(a.ID, err.Error())
	}
	return s.repo.MarkReady(a.ID, url)
}
