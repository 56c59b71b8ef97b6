package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/judo-pools/models"
)

var (
	ErrBoutNotFound        = errors.New("bout not found")
	ErrBoutPairConflict    = errors.New("a bout already exists for this pair")
	ErrBoutFighterInvalid  = errors.New("bout fighter conflict or invalid")
	ErrBoutWinnerInvalid   = errors.New("bout winner must be one of the fighters")
	ErrBoutCategoryInvalid = errors.New("bout category conflict or invalid")
	ErrBoutEmptyResult     = errors.New("a bout without score or winner is not stored")
)

type BoutRepository interface {
	List(ctx context.Context) ([]models.Bout, error)
	ListByCategory(ctx context.Context, categoryID int) ([]models.Bout, error)
	// FindByPair looks a bout up by its unordered fighter pair.
	FindByPair(ctx context.Context, exec SQLExecutor, categoryID, fighterA, fighterB int) (*models.Bout, error)
	Create(ctx context.Context, exec SQLExecutor, bout *models.Bout) error
	UpdateResult(ctx context.Context, exec SQLExecutor, bout *models.Bout) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresBoutRepository struct {
	db *sql.DB
}

func NewPostgresBoutRepository(db *sql.DB) BoutRepository {
	return &postgresBoutRepository{db: db}
}

const boutColumns = `id, category_id, fighter1_id, fighter2_id, score1, score2, winner_id, updated_at`

func scanBout(row interface{ Scan(...interface{}) error }, b *models.Bout) error {
	return row.Scan(
		&b.ID,
		&b.CategoryID,
		&b.Fighter1ID,
		&b.Fighter2ID,
		&b.Score1,
		&b.Score2,
		&b.WinnerID,
		&b.UpdatedAt,
	)
}

func (r *postgresBoutRepository) List(ctx context.Context) ([]models.Bout, error) {
	return r.query(ctx, `SELECT `+boutColumns+` FROM bouts ORDER BY category_id, id`)
}

func (r *postgresBoutRepository) ListByCategory(ctx context.Context, categoryID int) ([]models.Bout, error) {
	return r.query(ctx, `SELECT `+boutColumns+` FROM bouts WHERE category_id = $1 ORDER BY id`, categoryID)
}

func (r *postgresBoutRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Bout, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bouts: %w", err)
	}
	defer rows.Close()

	bouts := make([]models.Bout, 0)
	for rows.Next() {
		var b models.Bout
		if err := scanBout(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan bout row: %w", err)
		}
		bouts = append(bouts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bout rows iteration: %w", err)
	}
	return bouts, nil
}

func (r *postgresBoutRepository) FindByPair(ctx context.Context, exec SQLExecutor, categoryID, fighterA, fighterB int) (*models.Bout, error) {
	key := models.NewPairKey(fighterA, fighterB)
	query := `
		SELECT ` + boutColumns + `
		FROM bouts
		WHERE category_id = $1
		  AND LEAST(fighter1_id, fighter2_id) = $2
		  AND GREATEST(fighter1_id, fighter2_id) = $3
		FOR UPDATE`

	var b models.Bout
	if err := scanBout(exec.QueryRowContext(ctx, query, categoryID, key.Low, key.High), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBoutNotFound
		}
		return nil, fmt.Errorf("failed to scan bout for pair %d/%d: %w", key.Low, key.High, err)
	}
	return &b, nil
}

func (r *postgresBoutRepository) Create(ctx context.Context, exec SQLExecutor, bout *models.Bout) error {
	query := `
		INSERT INTO bouts (category_id, fighter1_id, fighter2_id, score1, score2, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at`

	err := exec.QueryRowContext(ctx, query,
		bout.CategoryID,
		bout.Fighter1ID,
		bout.Fighter2ID,
		bout.Score1,
		bout.Score2,
		bout.WinnerID,
	).Scan(&bout.ID, &bout.UpdatedAt)
	return r.handleBoutError(err)
}

func (r *postgresBoutRepository) UpdateResult(ctx context.Context, exec SQLExecutor, bout *models.Bout) error {
	query := `
		UPDATE bouts
		SET score1 = $1, score2 = $2, winner_id = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`

	err := exec.QueryRowContext(ctx, query, bout.Score1, bout.Score2, bout.WinnerID, bout.ID).Scan(&bout.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBoutNotFound
	}
	return r.handleBoutError(err)
}

func (r *postgresBoutRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM bouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bout %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBoutNotFound)
}

func (r *postgresBoutRepository) handleBoutError(err error) error {
	if err == nil {
		return nil
	}
	constraint, ok := constraintOf(err)
	if !ok {
		return err
	}
	switch constraint {
	case "bouts_pair_key":
		return ErrBoutPairConflict
	case "bouts_fighter1_id_fkey", "bouts_fighter2_id_fkey", "bouts_distinct_fighters":
		return ErrBoutFighterInvalid
	case "bouts_winner_id_fkey", "bouts_winner_is_fighter":
		return ErrBoutWinnerInvalid
	case "bouts_category_id_fkey":
		return ErrBoutCategoryInvalid
	case "bouts_not_empty":
		return ErrBoutEmptyResult
	}
	return err
}
