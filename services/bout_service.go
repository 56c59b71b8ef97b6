package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/metrics"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/snapshot"
)

type SaveFixtureInput struct {
	Fighter1ID int               `json:"fighter1_id"`
	Fighter2ID int               `json:"fighter2_id"`
	Score1     int               `json:"score1"`
	Score2     int               `json:"score2"`
	Winner     brackets.Decision `json:"winner"`
}

type BoutService interface {
	// SaveFixture records, corrects or clears the result of one pairing of a pool and
	// returns the recomputed pool.
	SaveFixture(ctx context.Context, key models.PoolKey, input SaveFixtureInput) (*PoolResult, error)
}

// PoolResult is the pool after a result change plus what happened to the bout.
type PoolResult struct {
	Action string             `json:"action"`
	Pool   *snapshot.PoolView `json:"pool"`
}

type boutService struct {
	tx       repositories.Transactor
	loader   SnapshotLoader
	boutRepo repositories.BoutRepository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewBoutService(
	tx repositories.Transactor,
	loader SnapshotLoader,
	boutRepo repositories.BoutRepository,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) BoutService {
	return &boutService{
		tx:       tx,
		loader:   loader,
		boutRepo: boutRepo,
		notifier: notifierOrNop(notifier),
		metrics:  m,
		logger:   logger,
	}
}

func (s *boutService) SaveFixture(ctx context.Context, key models.PoolKey, input SaveFixtureInput) (*PoolResult, error) {
	if input.Fighter1ID == input.Fighter2ID {
		return nil, fmt.Errorf("%w: a competitor cannot fight themselves", ErrValidationFailed)
	}
	result, err := brackets.ResolveResult(input.Score1, input.Score2, input.Winner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	view, err := poolFromSnapshot(snap, key)
	if err != nil {
		return nil, err
	}
	if view.Progress.Status == brackets.StatusValidated {
		return nil, fmt.Errorf("%w: category %d pool %d", ErrPoolValidated, key.CategoryID, key.PoolNumber)
	}
	if !paired(view.Fixtures, input.Fighter1ID, input.Fighter2ID) {
		return nil, fmt.Errorf("%w: %d and %d", ErrNotPaired, input.Fighter1ID, input.Fighter2ID)
	}

	action := result.Action.String()
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		existing, err := s.boutRepo.FindByPair(ctx, exec, key.CategoryID, input.Fighter1ID, input.Fighter2ID)
		if err != nil && !errors.Is(err, repositories.ErrBoutNotFound) {
			return err
		}

		if result.Action == brackets.ActionDelete {
			if existing == nil {
				action = "noop"
				return nil
			}
			return s.boutRepo.Delete(ctx, exec, existing.ID)
		}

		if existing != nil {
			// the stored orientation wins; flip the submission onto it
			score1, score2 := result.Score1, result.Score2
			if existing.Fighter1ID != input.Fighter1ID {
				score1, score2 = score2, score1
			}
			existing.Score1 = score1
			existing.Score2 = score2
			existing.WinnerID = result.WinnerID(input.Fighter1ID, input.Fighter2ID)
			return s.boutRepo.UpdateResult(ctx, exec, existing)
		}

		return s.boutRepo.Create(ctx, exec, &models.Bout{
			CategoryID: key.CategoryID,
			Fighter1ID: input.Fighter1ID,
			Fighter2ID: input.Fighter2ID,
			Score1:     result.Score1,
			Score2:     result.Score2,
			WinnerID:   result.WinnerID(input.Fighter1ID, input.Fighter2ID),
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrBoutPairConflict), errors.Is(err, repositories.ErrBoutNotFound):
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		case errors.Is(err, repositories.ErrBoutFighterInvalid), errors.Is(err, repositories.ErrBoutCategoryInvalid):
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("save bout: %w", err)
	}

	s.metrics.BoutResults.WithLabelValues(action).Inc()
	s.logger.InfoContext(ctx, "bout result saved",
		slog.Int("category_id", key.CategoryID),
		slog.Int("pool_number", key.PoolNumber),
		slog.Int("fighter1_id", input.Fighter1ID),
		slog.Int("fighter2_id", input.Fighter2ID),
		slog.String("action", action),
	)

	fresh, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := poolFromSnapshot(fresh, key)
	if err != nil {
		return nil, err
	}
	notifyPool(s.notifier, updated.Assignment, updated)
	return &PoolResult{Action: action, Pool: updated}, nil
}

func paired(fixtures []brackets.Fixture, a, b int) bool {
	want := models.NewPairKey(a, b)
	for i := range fixtures {
		if models.NewPairKey(fixtures[i].Fighter1ID, fixtures[i].Fighter2ID) == want {
			return true
		}
	}
	return false
}
