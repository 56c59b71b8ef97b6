package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names are matched by the repositories when translating errors.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id               SERIAL PRIMARY KEY,
		name             TEXT NOT NULL,
		include_in_stats BOOLEAN NOT NULL DEFAULT TRUE,
		birth_year_min   INT,
		birth_year_max   INT,
		CONSTRAINT categories_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS competitors (
		id              SERIAL PRIMARY KEY,
		category_id     INT NOT NULL,
		first_name      TEXT NOT NULL,
		last_name       TEXT NOT NULL,
		sex             TEXT NOT NULL DEFAULT 'M',
		birth_year      INT NOT NULL DEFAULT 0,
		club            TEXT NOT NULL DEFAULT '',
		weight          NUMERIC(6, 2) NOT NULL,
		pool_number     INT,
		outside_bracket BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT competitors_category_id_fkey FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE CASCADE,
		CONSTRAINT competitors_sex_check CHECK (sex IN ('M', 'F'))
	)`,
	`CREATE TABLE IF NOT EXISTS bouts (
		id          SERIAL PRIMARY KEY,
		category_id INT NOT NULL,
		fighter1_id INT NOT NULL,
		fighter2_id INT NOT NULL,
		score1      INT NOT NULL DEFAULT 0 CHECK (score1 >= 0),
		score2      INT NOT NULL DEFAULT 0 CHECK (score2 >= 0),
		winner_id   INT,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT bouts_category_id_fkey FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE CASCADE,
		CONSTRAINT bouts_fighter1_id_fkey FOREIGN KEY (fighter1_id) REFERENCES competitors (id) ON DELETE CASCADE,
		CONSTRAINT bouts_fighter2_id_fkey FOREIGN KEY (fighter2_id) REFERENCES competitors (id) ON DELETE CASCADE,
		CONSTRAINT bouts_winner_id_fkey FOREIGN KEY (winner_id) REFERENCES competitors (id) ON DELETE SET NULL,
		CONSTRAINT bouts_distinct_fighters CHECK (fighter1_id <> fighter2_id),
		CONSTRAINT bouts_winner_is_fighter CHECK (winner_id IS NULL OR winner_id IN (fighter1_id, fighter2_id)),
		CONSTRAINT bouts_not_empty CHECK (score1 > 0 OR score2 > 0 OR winner_id IS NOT NULL)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS bouts_pair_key
		ON bouts (category_id, LEAST(fighter1_id, fighter2_id), GREATEST(fighter1_id, fighter2_id))`,
	`CREATE TABLE IF NOT EXISTS pool_assignments (
		id           SERIAL PRIMARY KEY,
		category_id  INT NOT NULL,
		pool_number  INT NOT NULL,
		table_number INT NOT NULL DEFAULT 0 CHECK (table_number >= 0),
		sort_order   INT NOT NULL DEFAULT 0,
		validated    BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT pool_assignments_category_id_fkey FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE CASCADE,
		CONSTRAINT pool_assignments_pool_key UNIQUE (category_id, pool_number)
	)`,
	`CREATE TABLE IF NOT EXISTS configuration (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// EnsureSchema creates the tables and indexes that do not exist yet.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
