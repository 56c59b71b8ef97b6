package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/metrics"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/snapshot"
	"github.com/Dosada05/judo-pools/tables"
	"github.com/Dosada05/judo-pools/tokens"
)

type ReassignInput struct {
	CategoryID int `json:"category_id"`
	PoolNumber int `json:"pool_number"`
	Table      int `json:"table"`
	Order      int `json:"order"`
}

type BalanceResult struct {
	DryRun  bool                `json:"dry_run"`
	Plan    tables.Plan         `json:"plan"`
	Changed []tables.Assignment `json:"changed"`
}

type Settings struct {
	TableCount       int   `json:"table_count"`
	ActiveCategories []int `json:"active_categories"`
}

type TableLink struct {
	Table     int        `json:"table"`
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type TableService interface {
	Board(ctx context.Context) (*snapshot.Board, error)
	Table(ctx context.Context, number int) (*snapshot.Table, error)
	Balance(ctx context.Context, dryRun bool) (*BalanceResult, error)
	Reassign(ctx context.Context, moves []ReassignInput) (*snapshot.Board, error)
	Settings(ctx context.Context) (*Settings, error)
	SetTableCount(ctx context.Context, count int) (*Settings, error)
	SetActiveCategories(ctx context.Context, ids []int) (*Settings, error)
	TableLink(ctx context.Context, number int) (*TableLink, error)
	ResolveLink(ctx context.Context, token string) (*snapshot.Table, error)
}

type tableService struct {
	tx             repositories.Transactor
	loader         SnapshotLoader
	assignmentRepo repositories.AssignmentRepository
	configRepo     repositories.ConfigRepository
	links          *tokens.TableLinks
	publicBaseURL  string
	strategy       tables.Strategy
	notifier       Notifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewTableService(
	tx repositories.Transactor,
	loader SnapshotLoader,
	assignmentRepo repositories.AssignmentRepository,
	configRepo repositories.ConfigRepository,
	links *tokens.TableLinks,
	publicBaseURL string,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) TableService {
	return &tableService{
		tx:             tx,
		loader:         loader,
		assignmentRepo: assignmentRepo,
		configRepo:     configRepo,
		links:          links,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		strategy:       tables.LargestFirst{},
		notifier:       notifierOrNop(notifier),
		metrics:        m,
		logger:         logger,
	}
}

func (s *tableService) board(ctx context.Context) (*snapshot.Board, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	board, err := snap.Board()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return &board, nil
}

func (s *tableService) Board(ctx context.Context) (*snapshot.Board, error) {
	return s.board(ctx)
}

func (s *tableService) Table(ctx context.Context, number int) (*snapshot.Table, error) {
	board, err := s.board(ctx)
	if err != nil {
		return nil, err
	}
	table, ok := board.Table(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTableNotFound, number)
	}
	return &table, nil
}

// Balance redistributes the movable pools of the active categories. A dry run only
// returns the plan.
func (s *tableService) Balance(ctx context.Context, dryRun bool) (*BalanceResult, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	pools, err := snap.BalancerInput()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	plan, err := tables.Balance(snap.TableCount, pools, s.strategy)
	if err != nil {
		return nil, fmt.Errorf("balance tables: %w", err)
	}
	result := &BalanceResult{DryRun: dryRun, Plan: plan, Changed: plan.Changed(pools)}

	mode := "apply"
	if dryRun {
		mode = "dry_run"
	}
	s.metrics.BalanceRuns.WithLabelValues(mode).Inc()
	if dryRun || len(result.Changed) == 0 {
		return result, nil
	}

	placements := make([]models.PoolAssignment, 0, len(result.Changed))
	for _, a := range result.Changed {
		placements = append(placements, models.PoolAssignment{
			CategoryID:  a.Key.CategoryID,
			PoolNumber:  a.Key.PoolNumber,
			TableNumber: a.Table,
			Order:       a.Order,
		})
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.assignmentRepo.SavePlacements(ctx, exec, placements)
	})
	if err != nil {
		return nil, fmt.Errorf("save table placements: %w", err)
	}

	s.metrics.PoolsMoved.Add(float64(len(placements)))
	s.logger.InfoContext(ctx, "tables balanced",
		slog.Int("tables", snap.TableCount),
		slog.Int("moved", len(placements)),
		slog.Int("max_load", plan.MaxLoad()),
	)
	s.broadcastBoard(ctx)
	return result, nil
}

// Reassign places pools by hand, bypassing the balancer. Any pool may be moved,
// including started ones.
func (s *tableService) Reassign(ctx context.Context, moves []ReassignInput) (*snapshot.Board, error) {
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: no pools to reassign", ErrValidationFailed)
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	placements := make([]models.PoolAssignment, 0, len(moves))
	seen := make(map[models.PoolKey]bool, len(moves))
	for _, m := range moves {
		key := models.PoolKey{CategoryID: m.CategoryID, PoolNumber: m.PoolNumber}
		if m.Table < tables.Backlog || m.Order < 0 {
			return nil, fmt.Errorf("%w: table and order must not be negative", ErrValidationFailed)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: category %d pool %d listed twice", ErrValidationFailed, key.CategoryID, key.PoolNumber)
		}
		seen[key] = true
		if _, err := snap.Pool(key.CategoryID, key.PoolNumber); errors.Is(err, snapshot.ErrUnknownPool) {
			return nil, fmt.Errorf("%w: category %d pool %d", ErrPoolNotFound, key.CategoryID, key.PoolNumber)
		}
		placements = append(placements, models.PoolAssignment{
			CategoryID:  key.CategoryID,
			PoolNumber:  key.PoolNumber,
			TableNumber: m.Table,
			Order:       m.Order,
		})
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.assignmentRepo.SavePlacements(ctx, exec, placements)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAssignmentCategoryInvalid) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("reassign pools: %w", err)
	}
	s.logger.InfoContext(ctx, "pools reassigned manually", slog.Int("pools", len(placements)))
	return s.broadcastBoard(ctx), nil
}

// broadcastBoard publishes the current board and returns it, nil when it cannot be built.
func (s *tableService) broadcastBoard(ctx context.Context) *snapshot.Board {
	board, err := s.board(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to rebuild board after change", slog.Any("error", err))
		return nil
	}
	publishBoard(s.notifier, board)
	return board
}

func (s *tableService) Settings(ctx context.Context) (*Settings, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return settingsOf(snap), nil
}

func settingsOf(snap *snapshot.Snapshot) *Settings {
	ids := snap.ActiveCategories
	if ids == nil {
		ids = []int{}
	}
	return &Settings{TableCount: snap.TableCount, ActiveCategories: ids}
}

func (s *tableService) SetTableCount(ctx context.Context, count int) (*Settings, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: table count must be at least 1", ErrValidationFailed)
	}
	if err := s.setConfig(ctx, models.ConfigTableCount, strconv.Itoa(count)); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "table count changed", slog.Int("tables", count))
	return s.afterSettingsChange(ctx)
}

// SetActiveCategories restricts the board and the balancer to the given categories.
// An empty list makes every category active again.
func (s *tableService) SetActiveCategories(ctx context.Context, ids []int) (*Settings, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := snap.Category(id); !ok {
			return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
		}
	}
	normalized, err := parseCategoryIDs(formatCategoryIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if err := s.setConfig(ctx, models.ConfigActiveCategories, formatCategoryIDs(normalized)); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "active categories changed", slog.Any("categories", normalized))
	return s.afterSettingsChange(ctx)
}

func (s *tableService) setConfig(ctx context.Context, key, value string) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.configRepo.Set(ctx, exec, key, value)
	})
	if err != nil {
		return fmt.Errorf("save configuration %s: %w", key, err)
	}
	return nil
}

func (s *tableService) afterSettingsChange(ctx context.Context) (*Settings, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if board, err := snap.Board(); err == nil {
		publishBoard(s.notifier, &board)
	}
	return settingsOf(snap), nil
}

// TableLink signs the link printed on a scoring table.
func (s *tableService) TableLink(ctx context.Context, number int) (*TableLink, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if number < 1 || number > snap.TableCount {
		return nil, fmt.Errorf("%w: %d", ErrTableNotFound, number)
	}
	token, expires, err := s.links.Issue(number)
	if err != nil {
		return nil, fmt.Errorf("issue table link: %w", err)
	}
	link := &TableLink{Table: number, Token: token, URL: s.publicBaseURL + "/t/" + token}
	if !expires.IsZero() {
		link.ExpiresAt = &expires
	}
	return link, nil
}

func (s *tableService) ResolveLink(ctx context.Context, token string) (*snapshot.Table, error) {
	number, err := s.links.Resolve(token)
	if err != nil {
		if errors.Is(err, tokens.ErrInvalidToken) {
			return nil, ErrInvalidLink
		}
		return nil, err
	}
	return s.Table(ctx, number)
}

// publishBoard sends the board to the board room and each table its own line.
func publishBoard(n Notifier, board *snapshot.Board) {
	n.BroadcastToRoom(brackets.RoomBoard, brackets.Message{Type: brackets.MessageBoardUpdated, Payload: board, RoomID: brackets.RoomBoard})
	for _, t := range board.Tables {
		room := brackets.TableRoom(t.Number)
		n.BroadcastToRoom(room, brackets.Message{Type: brackets.MessageBoardUpdated, Payload: t, RoomID: room})
	}
}
