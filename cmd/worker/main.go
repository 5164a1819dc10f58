package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"shootflow/internal/engine/artifacts"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/logger"
	"shootflow/internal/platform/config"
	"shootflow/internal/platform/database"
	"shootflow/internal/platform/repositories"
	"shootflow/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	artifactRepo := artifacts.NewRepository(db)
	projectRepo := projects.NewRepository(db)
	inviteRepo := repositories.NewInvitationRepository(db)

	generator := workers.NewZipGenerator(cfg.App.MediaDir, cfg.App.ArchiveDir, cfg.App.ArchiveBaseURL)
	artifactSvc := artifacts.NewService(artifactRepo, projectRepo, generator)
	artifactSvc.SetLimits(cfg.Worker.StuckTimeout, cfg.Worker.MaxRetries)

	archiveWorker := workers.NewArchiveWorker(artifactSvc, cfg.Worker.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return archiveWorker.Run(ctx)
	})

	g.Go(func() error {
		c := cron.New()
		spec := cfg.Worker.InviteSweepSpec
		if spec == "" {
			spec = "@hourly"
		}
		if _, err := c.AddFunc(spec, func() {
			workers.SweepExpiredInvitations(inviteRepo)
		}); err != nil {
			return err
		}
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("worker exited")
	}
	log.Info().Msg("worker shut down")
}
