package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/judo-pools/models"
)

var ErrConfigNotFound = errors.New("configuration key not found")

type ConfigRepository interface {
	List(ctx context.Context) ([]models.ConfigEntry, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, exec SQLExecutor, key, value string) error
}

type postgresConfigRepository struct {
	db *sql.DB
}

func NewPostgresConfigRepository(db *sql.DB) ConfigRepository {
	return &postgresConfigRepository{db: db}
}

func (r *postgresConfigRepository) List(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM configuration ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query configuration: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ConfigEntry, 0)
	for rows.Next() {
		var e models.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("failed to scan configuration row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during configuration rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresConfigRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM configuration WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrConfigNotFound
		}
		return "", fmt.Errorf("failed to read configuration %q: %w", key, err)
	}
	return value, nil
}

func (r *postgresConfigRepository) Set(ctx context.Context, exec SQLExecutor, key, value string) error {
	query := `
		INSERT INTO configuration (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := exec.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write configuration %q: %w", key, err)
	}
	return nil
}
