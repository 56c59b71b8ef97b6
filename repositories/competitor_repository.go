package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/judo-pools/models"
)

var (
	ErrCompetitorNotFound        = errors.New("competitor not found")
	ErrCompetitorCategoryInvalid = errors.New("competitor category conflict or invalid")
)

type CompetitorRepository interface {
	List(ctx context.Context) ([]models.Competitor, error)
	ListByCategory(ctx context.Context, categoryID int) ([]models.Competitor, error)
	GetByID(ctx context.Context, id int) (*models.Competitor, error)
	Create(ctx context.Context, exec SQLExecutor, competitor *models.Competitor) error
	// UpdatePools writes a batch of pool numbers; every competitor must exist.
	UpdatePools(ctx context.Context, exec SQLExecutor, updates []models.PoolUpdate) error
	SetOutsideBracket(ctx context.Context, exec SQLExecutor, id int, flag bool) error
	// Update writes the registration fields; pool number and flags are left alone.
	Update(ctx context.Context, exec SQLExecutor, competitor *models.Competitor) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{db: db}
}

const competitorColumns = `id, category_id, first_name, last_name, sex, birth_year, club, weight, pool_number, outside_bracket, created_at`

func scanCompetitor(row interface{ Scan(...interface{}) error }, c *models.Competitor) error {
	return row.Scan(
		&c.ID,
		&c.CategoryID,
		&c.FirstName,
		&c.LastName,
		&c.Sex,
		&c.BirthYear,
		&c.Club,
		&c.Weight,
		&c.PoolNumber,
		&c.OutsideBracket,
		&c.CreatedAt,
	)
}

func (r *postgresCompetitorRepository) List(ctx context.Context) ([]models.Competitor, error) {
	return r.query(ctx, `SELECT `+competitorColumns+` FROM competitors ORDER BY category_id, pool_number NULLS LAST, weight, id`)
}

func (r *postgresCompetitorRepository) ListByCategory(ctx context.Context, categoryID int) ([]models.Competitor, error) {
	return r.query(ctx, `SELECT `+competitorColumns+` FROM competitors WHERE category_id = $1 ORDER BY pool_number NULLS LAST, weight, id`, categoryID)
}

func (r *postgresCompetitorRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Competitor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer rows.Close()

	competitors := make([]models.Competitor, 0)
	for rows.Next() {
		var c models.Competitor
		if err := scanCompetitor(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan competitor row: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during competitor rows iteration: %w", err)
	}
	return competitors, nil
}

func (r *postgresCompetitorRepository) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	var c models.Competitor
	err := scanCompetitor(r.db.QueryRowContext(ctx, `SELECT `+competitorColumns+` FROM competitors WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to scan competitor by id %d: %w", id, err)
	}
	return &c, nil
}

func (r *postgresCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, competitor *models.Competitor) error {
	query := `
		INSERT INTO competitors
			(category_id, first_name, last_name, sex, birth_year, club, weight, pool_number, outside_bracket)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		competitor.CategoryID,
		competitor.FirstName,
		competitor.LastName,
		competitor.Sex,
		competitor.BirthYear,
		competitor.Club,
		competitor.Weight,
		competitor.PoolNumber,
		competitor.OutsideBracket,
	).Scan(&competitor.ID, &competitor.CreatedAt)
	return r.handleCompetitorError(err)
}

func (r *postgresCompetitorRepository) UpdatePools(ctx context.Context, exec SQLExecutor, updates []models.PoolUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]int64, len(updates))
	pools := make([]int64, len(updates))
	for i, u := range updates {
		ids[i] = int64(u.CompetitorID)
		pools[i] = int64(u.PoolNumber)
	}

	query := `
		UPDATE competitors AS c
		SET pool_number = u.pool_number
		FROM unnest($1::int[], $2::int[]) AS u(id, pool_number)
		WHERE c.id = u.id`
	result, err := exec.ExecContext(ctx, query, pq.Array(ids), pq.Array(pools))
	if err != nil {
		return fmt.Errorf("failed to update pool numbers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected != int64(len(updates)) {
		return fmt.Errorf("%w: updated %d of %d competitors", ErrCompetitorNotFound, affected, len(updates))
	}
	return nil
}

func (r *postgresCompetitorRepository) SetOutsideBracket(ctx context.Context, exec SQLExecutor, id int, flag bool) error {
	result, err := exec.ExecContext(ctx, `UPDATE competitors SET outside_bracket = $1 WHERE id = $2`, flag, id)
	if err != nil {
		return fmt.Errorf("failed to update outside bracket flag of competitor %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) Update(ctx context.Context, exec SQLExecutor, competitor *models.Competitor) error {
	query := `
		UPDATE competitors
		SET first_name = $1, last_name = $2, sex = $3, birth_year = $4, club = $5, weight = $6
		WHERE id = $7`
	result, err := exec.ExecContext(ctx, query,
		competitor.FirstName,
		competitor.LastName,
		competitor.Sex,
		competitor.BirthYear,
		competitor.Club,
		competitor.Weight,
		competitor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update competitor %d: %w", competitor.ID, err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete competitor %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) handleCompetitorError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := constraintOf(err); ok && constraint == "competitors_category_id_fkey" {
		return ErrCompetitorCategoryInvalid
	}
	return err
}
