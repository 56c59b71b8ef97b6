package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/snapshot"
)

// SnapshotLoader reads the whole tournament state in one pass. Nothing is cached:
// every call reflects the database at that moment.
type SnapshotLoader interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

type snapshotLoader struct {
	categoryRepo      repositories.CategoryRepository
	competitorRepo    repositories.CompetitorRepository
	boutRepo          repositories.BoutRepository
	assignmentRepo    repositories.AssignmentRepository
	configRepo        repositories.ConfigRepository
	defaultTableCount int
	logger            *slog.Logger
	now               func() time.Time
}

func NewSnapshotLoader(
	categoryRepo repositories.CategoryRepository,
	competitorRepo repositories.CompetitorRepository,
	boutRepo repositories.BoutRepository,
	assignmentRepo repositories.AssignmentRepository,
	configRepo repositories.ConfigRepository,
	defaultTableCount int,
	logger *slog.Logger,
) SnapshotLoader {
	return &snapshotLoader{
		categoryRepo:      categoryRepo,
		competitorRepo:    competitorRepo,
		boutRepo:          boutRepo,
		assignmentRepo:    assignmentRepo,
		configRepo:        configRepo,
		defaultTableCount: defaultTableCount,
		logger:            logger,
		now:               time.Now,
	}
}

func (l *snapshotLoader) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	var (
		data    snapshot.Data
		entries []models.ConfigEntry
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if data.Categories, err = l.categoryRepo.List(gCtx); err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if data.Competitors, err = l.competitorRepo.List(gCtx); err != nil {
			return fmt.Errorf("load competitors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if data.Bouts, err = l.boutRepo.List(gCtx); err != nil {
			return fmt.Errorf("load bouts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if data.Assignments, err = l.assignmentRepo.List(gCtx); err != nil {
			return fmt.Errorf("load pool assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if entries, err = l.configRepo.List(gCtx); err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.TableCount = l.defaultTableCount
	for _, e := range entries {
		switch e.Key {
		case models.ConfigTableCount:
			n, err := parseTableCount(e.Value)
			if err != nil {
				l.logger.WarnContext(ctx, "ignoring stored table count", slog.String("value", e.Value), slog.Any("error", err))
				continue
			}
			data.TableCount = n
		case models.ConfigActiveCategories:
			ids, err := parseCategoryIDs(e.Value)
			if err != nil {
				l.logger.WarnContext(ctx, "ignoring stored active categories", slog.String("value", e.Value), slog.Any("error", err))
				continue
			}
			data.ActiveCategories = ids
		}
	}
	data.TakenAt = l.now()
	return snapshot.New(data), nil
}
