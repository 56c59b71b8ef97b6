package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/judo-pools/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
	// Upsert inserts the category or updates the one with the same name.
	Upsert(ctx context.Context, exec SQLExecutor, category *models.Category) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

const categoryColumns = `id, name, include_in_stats, birth_year_min, birth_year_max`

func scanCategory(row interface{ Scan(...interface{}) error }, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.IncludeInStats, &c.BirthYearMin, &c.BirthYearMax)
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during category rows iteration: %w", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan category by id %d: %w", id, err)
	}
	return &c, nil
}

func (r *postgresCategoryRepository) Upsert(ctx context.Context, exec SQLExecutor, category *models.Category) error {
	query := `
		INSERT INTO categories (name, include_in_stats, birth_year_min, birth_year_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET include_in_stats = EXCLUDED.include_in_stats,
		    birth_year_min = EXCLUDED.birth_year_min,
		    birth_year_max = EXCLUDED.birth_year_max
		RETURNING id`
	err := exec.QueryRowContext(ctx, query,
		category.Name,
		category.IncludeInStats,
		category.BirthYearMin,
		category.BirthYearMax,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert category %q: %w", category.Name, err)
	}
	return nil
}
