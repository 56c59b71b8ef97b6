package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/judo-pools/models"
)

var ErrAssignmentCategoryInvalid = errors.New("pool assignment category conflict or invalid")

type AssignmentRepository interface {
	List(ctx context.Context) ([]models.PoolAssignment, error)
	// SavePlacements upserts table and order of each pool, leaving the validation flag alone.
	SavePlacements(ctx context.Context, exec SQLExecutor, placements []models.PoolAssignment) error
	SetValidated(ctx context.Context, exec SQLExecutor, key models.PoolKey, validated bool) error
	// ReplaceCategory rewrites every assignment of a category.
	ReplaceCategory(ctx context.Context, exec SQLExecutor, categoryID int, assignments []models.PoolAssignment) error
}

type postgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &postgresAssignmentRepository{db: db}
}

func (r *postgresAssignmentRepository) List(ctx context.Context) ([]models.PoolAssignment, error) {
	query := `
		SELECT id, category_id, pool_number, table_number, sort_order, validated
		FROM pool_assignments
		ORDER BY table_number, sort_order, category_id, pool_number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]models.PoolAssignment, 0)
	for rows.Next() {
		var a models.PoolAssignment
		if err := rows.Scan(&a.ID, &a.CategoryID, &a.PoolNumber, &a.TableNumber, &a.Order, &a.Validated); err != nil {
			return nil, fmt.Errorf("failed to scan pool assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pool assignment rows iteration: %w", err)
	}
	return assignments, nil
}

func (r *postgresAssignmentRepository) SavePlacements(ctx context.Context, exec SQLExecutor, placements []models.PoolAssignment) error {
	if len(placements) == 0 {
		return nil
	}
	cats, pools, tables, orders := assignmentColumns(placements)
	query := `
		INSERT INTO pool_assignments (category_id, pool_number, table_number, sort_order)
		SELECT * FROM unnest($1::int[], $2::int[], $3::int[], $4::int[])
		ON CONFLICT (category_id, pool_number) DO UPDATE
		SET table_number = EXCLUDED.table_number, sort_order = EXCLUDED.sort_order`
	if _, err := exec.ExecContext(ctx, query, pq.Array(cats), pq.Array(pools), pq.Array(tables), pq.Array(orders)); err != nil {
		return r.handleAssignmentError(fmt.Errorf("failed to save pool placements: %w", err))
	}
	return nil
}

func (r *postgresAssignmentRepository) SetValidated(ctx context.Context, exec SQLExecutor, key models.PoolKey, validated bool) error {
	query := `
		INSERT INTO pool_assignments (category_id, pool_number, validated)
		VALUES ($1, $2, $3)
		ON CONFLICT (category_id, pool_number) DO UPDATE
		SET validated = EXCLUDED.validated`
	if _, err := exec.ExecContext(ctx, query, key.CategoryID, key.PoolNumber, validated); err != nil {
		return r.handleAssignmentError(fmt.Errorf("failed to set validation of pool %d/%d: %w", key.CategoryID, key.PoolNumber, err))
	}
	return nil
}

func (r *postgresAssignmentRepository) ReplaceCategory(ctx context.Context, exec SQLExecutor, categoryID int, assignments []models.PoolAssignment) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM pool_assignments WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("failed to clear pool assignments of category %d: %w", categoryID, err)
	}
	if len(assignments) == 0 {
		return nil
	}
	cats, pools, tables, orders := assignmentColumns(assignments)
	validated := make([]bool, len(assignments))
	for i, a := range assignments {
		validated[i] = a.Validated
	}
	query := `
		INSERT INTO pool_assignments (category_id, pool_number, table_number, sort_order, validated)
		SELECT * FROM unnest($1::int[], $2::int[], $3::int[], $4::int[], $5::bool[])`
	if _, err := exec.ExecContext(ctx, query, pq.Array(cats), pq.Array(pools), pq.Array(tables), pq.Array(orders), pq.Array(validated)); err != nil {
		return r.handleAssignmentError(fmt.Errorf("failed to insert pool assignments of category %d: %w", categoryID, err))
	}
	return nil
}

func assignmentColumns(assignments []models.PoolAssignment) (cats, pools, tables, orders []int64) {
	for _, a := range assignments {
		cats = append(cats, int64(a.CategoryID))
		pools = append(pools, int64(a.PoolNumber))
		tables = append(tables, int64(a.TableNumber))
		orders = append(orders, int64(a.Order))
	}
	return cats, pools, tables, orders
}

func (r *postgresAssignmentRepository) handleAssignmentError(err error) error {
	if constraint, ok := constraintOf(err); ok && constraint == "pool_assignments_category_id_fkey" {
		return ErrAssignmentCategoryInvalid
	}
	return err
}
