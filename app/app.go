// Package app wires repositories, services and their dependencies for the server
// and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/judo-pools/config"
	"github.com/Dosada05/judo-pools/db"
	"github.com/Dosada05/judo-pools/metrics"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/services"
	"github.com/Dosada05/judo-pools/storage"
	"github.com/Dosada05/judo-pools/tokens"
)

type App struct {
	DB      *sql.DB
	Metrics *metrics.Metrics

	Loader  services.SnapshotLoader
	Pools   services.PoolService
	Bouts   services.BoutService
	Tables  services.TableService
	Stats   services.StatsService
	Exports services.ExportService
	Seeds   services.SeedService
}

// New connects to the database, ensures the schema and builds every service.
// notifier may be nil when nobody listens for live updates.
func New(ctx context.Context, cfg *config.Config, notifier services.Notifier, logger *slog.Logger) (*App, error) {
	conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("initialize R2 uploader: %w", err)
		}
		logger.Info("R2 archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	links, err := tokens.NewTableLinks(cfg.TableLinkSecret, cfg.TableLinkTTL)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	tx := repositories.NewTransactor(conn, logger)
	categoryRepo := repositories.NewPostgresCategoryRepository(conn)
	competitorRepo := repositories.NewPostgresCompetitorRepository(conn)
	boutRepo := repositories.NewPostgresBoutRepository(conn)
	assignmentRepo := repositories.NewPostgresAssignmentRepository(conn)
	configRepo := repositories.NewPostgresConfigRepository(conn)

	m := metrics.New()
	loader := services.NewSnapshotLoader(categoryRepo, competitorRepo, boutRepo, assignmentRepo, configRepo, cfg.DefaultTableCount, logger)

	return &App{
		DB:      conn,
		Metrics: m,
		Loader:  loader,
		Pools:   services.NewPoolService(tx, loader, categoryRepo, competitorRepo, assignmentRepo, uploader, notifier, m, logger),
		Bouts:   services.NewBoutService(tx, loader, boutRepo, notifier, m, logger),
		Tables:  services.NewTableService(tx, loader, assignmentRepo, configRepo, links, cfg.PublicBaseURL, notifier, m, logger),
		Stats:   services.NewStatsService(loader),
		Exports: services.NewExportService(loader, uploader, cfg.PublicBaseURL, logger),
		Seeds:   services.NewSeedService(tx, categoryRepo, competitorRepo, logger),
	}, nil
}

// ApplySeedFile loads the configured TOML seed, if any.
func (a *App) ApplySeedFile(ctx context.Context, path string) (*services.SeedResult, error) {
	if path == "" {
		return &services.SeedResult{}, nil
	}
	seed, err := config.LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return a.Seeds.Apply(ctx, seed)
}

func (a *App) Close() error {
	return a.DB.Close()
}
