package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/metrics"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/roster"
	"github.com/Dosada05/judo-pools/snapshot"
	"github.com/Dosada05/judo-pools/storage"
)

// RosterView is the editable layout of a category.
type RosterView struct {
	CategoryID int           `json:"category_id"`
	Nodes      []roster.Node `json:"nodes"`
	Pools      int           `json:"pools"`
}

type RegisterCompetitorInput struct {
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname"`
	Sex       models.Sex `json:"sex"`
	BirthYear int        `json:"birth_year"`
	Club      string     `json:"club"`
	Weight    float64    `json:"weight"`
}

// UpdateCompetitorInput edits a competitor; nil fields are left unchanged.
type UpdateCompetitorInput struct {
	FirstName *string     `json:"firstname"`
	LastName  *string     `json:"lastname"`
	Sex       *models.Sex `json:"sex"`
	BirthYear *int        `json:"birth_year"`
	Club      *string     `json:"club"`
	Weight    *float64    `json:"weight"`
}

type ValidatePoolInput struct {
	Validated bool `json:"validated"`
	Force     bool `json:"force"`
}

type PoolService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	RegisterCompetitor(ctx context.Context, categoryID int, input RegisterCompetitorInput) (*models.Competitor, error)
	UpdateCompetitor(ctx context.Context, competitorID int, input UpdateCompetitorInput) (*models.Competitor, error)
	DeleteCompetitor(ctx context.Context, competitorID int) error
	Roster(ctx context.Context, categoryID int) (*RosterView, error)
	UpdateRoster(ctx context.Context, categoryID int, ops []roster.Operation) (*RosterView, error)
	GeneratePools(ctx context.Context, categoryID int) (*RosterView, error)
	SetOutsideBracket(ctx context.Context, competitorID int, flag bool) (*models.Competitor, error)
	Pools(ctx context.Context, categoryID int) ([]snapshot.PoolView, error)
	Pool(ctx context.Context, key models.PoolKey) (*snapshot.PoolView, error)
	ValidatePool(ctx context.Context, key models.PoolKey, input ValidatePoolInput) (*snapshot.PoolView, error)
}

type poolService struct {
	tx             repositories.Transactor
	loader         SnapshotLoader
	categoryRepo   repositories.CategoryRepository
	competitorRepo repositories.CompetitorRepository
	assignmentRepo repositories.AssignmentRepository
	uploader       storage.FileUploader
	notifier       Notifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewPoolService(
	tx repositories.Transactor,
	loader SnapshotLoader,
	categoryRepo repositories.CategoryRepository,
	competitorRepo repositories.CompetitorRepository,
	assignmentRepo repositories.AssignmentRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) PoolService {
	return &poolService{
		tx:             tx,
		loader:         loader,
		categoryRepo:   categoryRepo,
		competitorRepo: competitorRepo,
		assignmentRepo: assignmentRepo,
		uploader:       uploader,
		notifier:       notifierOrNop(notifier),
		metrics:        m,
		logger:         logger,
	}
}

func (s *poolService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func validateCompetitor(firstName, lastName string, sex models.Sex, weight float64) error {
	switch {
	case firstName == "" || lastName == "":
		return fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	case sex != models.SexMale && sex != models.SexFemale:
		return fmt.Errorf("%w: sex must be M or F", ErrValidationFailed)
	case weight <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrValidationFailed)
	}
	return nil
}

func (s *poolService) RegisterCompetitor(ctx context.Context, categoryID int, input RegisterCompetitorInput) (*models.Competitor, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validateCompetitor(input.FirstName, input.LastName, input.Sex, input.Weight); err != nil {
		return nil, err
	}

	competitor := &models.Competitor{
		CategoryID: categoryID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Sex:        input.Sex,
		BirthYear:  input.BirthYear,
		Club:       strings.TrimSpace(input.Club),
		Weight:     input.Weight,
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.competitorRepo.Create(ctx, exec, competitor)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorCategoryInvalid) {
			return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("register competitor: %w", err)
	}
	notifyCategory(s.notifier, brackets.MessageRosterSaved, categoryID, nil)
	return competitor, nil
}

// pooledCompetitor returns a competitor with its derived totals and the stored
// assignment of its pool, if it sits in one.
func (s *poolService) pooledCompetitor(ctx context.Context, competitorID int) (models.Competitor, models.PoolAssignment, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return models.Competitor{}, models.PoolAssignment{}, err
	}
	c, ok := snap.Competitor(competitorID)
	if !ok {
		return models.Competitor{}, models.PoolAssignment{}, fmt.Errorf("%w: %d", ErrCompetitorNotFound, competitorID)
	}
	var assignment models.PoolAssignment
	if c.Pool() > 0 {
		assignment = snap.Assignment(models.PoolKey{CategoryID: c.CategoryID, PoolNumber: c.Pool()})
	}
	return c, assignment, nil
}

// UpdateCompetitor edits the registration of a competitor. The weight decides the bout
// order of the pool, so it is frozen once the competitor has bouts or sits in a
// validated pool.
func (s *poolService) UpdateCompetitor(ctx context.Context, competitorID int, input UpdateCompetitorInput) (*models.Competitor, error) {
	current, assignment, err := s.pooledCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	updated := current
	if input.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updated.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Sex != nil {
		updated.Sex = *input.Sex
	}
	if input.BirthYear != nil {
		updated.BirthYear = *input.BirthYear
	}
	if input.Club != nil {
		updated.Club = strings.TrimSpace(*input.Club)
	}
	if input.Weight != nil {
		updated.Weight = *input.Weight
	}
	if err := validateCompetitor(updated.FirstName, updated.LastName, updated.Sex, updated.Weight); err != nil {
		return nil, err
	}
	if updated.Weight != current.Weight {
		if current.HasBouts {
			return nil, fmt.Errorf("%w: %w: weight of competitor %d", ErrValidationFailed, roster.ErrLocked, competitorID)
		}
		if assignment.Validated {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolValidated, assignment.PoolNumber)
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.competitorRepo.Update(ctx, exec, &updated)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("update competitor %d: %w", competitorID, err)
	}
	notifyCategory(s.notifier, brackets.MessageRosterSaved, updated.CategoryID, nil)
	return &updated, nil
}

// DeleteCompetitor removes a competitor. Competitors with bouts and members of
// validated pools cannot be removed.
func (s *poolService) DeleteCompetitor(ctx context.Context, competitorID int) error {
	current, assignment, err := s.pooledCompetitor(ctx, competitorID)
	if err != nil {
		return err
	}
	if current.HasBouts {
		return fmt.Errorf("%w: %w: competitor %d", ErrValidationFailed, roster.ErrLocked, competitorID)
	}
	if assignment.Validated {
		return fmt.Errorf("%w: pool %d", ErrPoolValidated, assignment.PoolNumber)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.competitorRepo.Delete(ctx, exec, competitorID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return fmt.Errorf("delete competitor %d: %w", competitorID, err)
	}
	s.logger.InfoContext(ctx, "competitor deleted",
		slog.Int("competitor_id", competitorID),
		slog.Int("category_id", current.CategoryID),
	)
	notifyCategory(s.notifier, brackets.MessageRosterSaved, current.CategoryID, nil)
	return nil
}

// loadSequence builds the roster sequence of a category from a fresh snapshot.
func (s *poolService) loadSequence(ctx context.Context, categoryID int) (*snapshot.Snapshot, *roster.Sequence, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := snap.Category(categoryID); !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
	}
	seq := roster.NewSequence()
	seq.Load(snap.CategoryCompetitors(categoryID))
	return snap, seq, nil
}

func rosterView(categoryID int, seq *roster.Sequence) *RosterView {
	return &RosterView{CategoryID: categoryID, Nodes: seq.Nodes(), Pools: len(seq.Pools())}
}

func (s *poolService) Roster(ctx context.Context, categoryID int) (*RosterView, error) {
	_, seq, err := s.loadSequence(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return rosterView(categoryID, seq), nil
}

// UpdateRoster applies the operator's edits on a fresh sequence and commits it. The
// in-memory sequence is discarded on any failure; callers reload.
func (s *poolService) UpdateRoster(ctx context.Context, categoryID int, ops []roster.Operation) (*RosterView, error) {
	snap, seq, err := s.loadSequence(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := seq.Apply(ops); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	before := make(map[int]int)
	for _, c := range snap.CategoryCompetitors(categoryID) {
		before[c.ID] = c.Pool()
	}
	updates := seq.Commit()

	assignments, err := remapAssignments(categoryID, before, updates, snap.Assignments)
	if err != nil {
		return nil, err
	}

	var changed []models.PoolUpdate
	for _, u := range updates {
		if before[u.CompetitorID] != u.PoolNumber {
			changed = append(changed, u)
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.competitorRepo.UpdatePools(ctx, exec, changed); err != nil {
			return err
		}
		return s.assignmentRepo.ReplaceCategory(ctx, exec, categoryID, assignments)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("commit roster of category %d: %w", categoryID, err)
	}

	s.metrics.RosterCommits.Inc()
	s.logger.InfoContext(ctx, "roster committed",
		slog.Int("category_id", categoryID),
		slog.Int("operations", len(ops)),
		slog.Int("changed", len(changed)),
	)
	view := rosterView(categoryID, seq)
	notifyCategory(s.notifier, brackets.MessageRosterSaved, categoryID, view)
	return view, nil
}

// GeneratePools replaces the layout of a category with the automatic distribution.
// Refused once any bout was recorded in the category or a pool was validated.
func (s *poolService) GeneratePools(ctx context.Context, categoryID int) (*RosterView, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Category(categoryID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
	}
	competitors := snap.CategoryCompetitors(categoryID)
	for _, c := range competitors {
		if c.HasBouts {
			return nil, fmt.Errorf("%w: competitor %d has bouts", ErrPoolsLocked, c.ID)
		}
	}
	for _, a := range snap.Assignments {
		if a.CategoryID == categoryID && a.Validated {
			return nil, fmt.Errorf("%w: pool %d is validated", ErrPoolsLocked, a.PoolNumber)
		}
	}

	updates := roster.Distribute(competitors)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.competitorRepo.UpdatePools(ctx, exec, updates); err != nil {
			return err
		}
		return s.assignmentRepo.ReplaceCategory(ctx, exec, categoryID, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("generate pools of category %d: %w", categoryID, err)
	}

	// the archived score sheet no longer matches the pools
	if s.uploader != nil {
		if err := s.uploader.Delete(ctx, storage.ScoreSheetKey(categoryID)); err != nil {
			s.logger.WarnContext(ctx, "failed to drop archived score sheet", slog.Int("category_id", categoryID), slog.Any("error", err))
		}
	}

	pools := make(map[int]int, len(updates))
	for _, u := range updates {
		pools[u.CompetitorID] = u.PoolNumber
	}
	for i := range competitors {
		n := pools[competitors[i].ID]
		competitors[i].PoolNumber = &n
	}
	seq := roster.NewSequence()
	seq.Load(competitors)

	s.metrics.RosterCommits.Inc()
	s.logger.InfoContext(ctx, "pools generated", slog.Int("category_id", categoryID), slog.Int("pools", len(seq.Pools())))
	view := rosterView(categoryID, seq)
	notifyCategory(s.notifier, brackets.MessageRosterSaved, categoryID, view)
	return view, nil
}

// SetOutsideBracket flips the flag on the loaded sequence first and reverts it when
// the write fails, so the returned state never diverges from the database.
func (s *poolService) SetOutsideBracket(ctx context.Context, competitorID int, flag bool) (*models.Competitor, error) {
	current, err := s.competitorRepo.GetByID(ctx, competitorID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCompetitorNotFound, competitorID)
		}
		return nil, err
	}
	_, seq, err := s.loadSequence(ctx, current.CategoryID)
	if err != nil {
		return nil, err
	}

	previous, err := seq.SetOutsideBracket(competitorID, flag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.competitorRepo.SetOutsideBracket(ctx, exec, competitorID, flag)
	})
	if err != nil {
		if _, revertErr := seq.SetOutsideBracket(competitorID, previous); revertErr != nil {
			s.logger.ErrorContext(ctx, "failed to revert outside bracket flag", slog.Int("competitor_id", competitorID), slog.Any("error", revertErr))
		}
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("set outside bracket flag: %w", err)
	}

	for _, n := range seq.Nodes() {
		if n.Competitor != nil && n.Competitor.ID == competitorID {
			notifyCategory(s.notifier, brackets.MessageRosterSaved, current.CategoryID, nil)
			return n.Competitor, nil
		}
	}
	return nil, fmt.Errorf("%w: competitor %d", ErrConflict, competitorID)
}

func (s *poolService) Pools(ctx context.Context, categoryID int) ([]snapshot.PoolView, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Category(categoryID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
	}
	views, err := snap.Pools(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return views, nil
}

func (s *poolService) Pool(ctx context.Context, key models.PoolKey) (*snapshot.PoolView, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return poolFromSnapshot(snap, key)
}

func poolFromSnapshot(snap *snapshot.Snapshot, key models.PoolKey) (*snapshot.PoolView, error) {
	view, err := snap.Pool(key.CategoryID, key.PoolNumber)
	switch {
	case errors.Is(err, snapshot.ErrUnknownPool):
		return nil, fmt.Errorf("%w: category %d pool %d", ErrPoolNotFound, key.CategoryID, key.PoolNumber)
	case errors.Is(err, brackets.ErrDuplicatePairing):
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	case err != nil:
		return nil, err
	}
	return &view, nil
}

// ValidatePool freezes or unfreezes a pool. Freezing needs a finished pool unless forced.
func (s *poolService) ValidatePool(ctx context.Context, key models.PoolKey, input ValidatePoolInput) (*snapshot.PoolView, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	view, err := poolFromSnapshot(snap, key)
	if err != nil {
		return nil, err
	}
	if input.Validated && !brackets.CanValidate(view.Progress, input.Force) {
		return nil, fmt.Errorf("%w: %d of %d bouts played", ErrPoolNotFinished, view.Progress.Played, view.Progress.Total)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.assignmentRepo.SetValidated(ctx, exec, key, input.Validated)
	})
	if err != nil {
		return nil, fmt.Errorf("validate pool: %w", err)
	}
	s.logger.InfoContext(ctx, "pool validation changed",
		slog.Int("category_id", key.CategoryID),
		slog.Int("pool_number", key.PoolNumber),
		slog.Bool("validated", input.Validated),
		slog.Bool("forced", input.Force && view.Progress.Status != brackets.StatusFinished),
	)

	view.Assignment.Validated = input.Validated
	view.Progress = brackets.PoolStatus(view.Fixtures, len(view.Roster), input.Validated)
	notifyPool(s.notifier, view.Assignment, view)
	return view, nil
}
