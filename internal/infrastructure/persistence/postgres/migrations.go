package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one forward/backward schema step.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

const migrationsTable = "schema_migrations"

// Migrator applies the embedded migrations in version order.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a migrator over GetMigrations().
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: GetMigrations()}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, "SELECT version, applied_at FROM "+migrationsTable+" ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int]time.Time)
	for rows.Next() {
		var (
			version   int
			appliedAt time.Time
		)
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		out[version] = appliedAt
	}
	return out, rows.Err()
}

// Migrate applies every pending migration, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO "+migrationsTable+" (version, name) VALUES ($1, $2)", mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d (%s): %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
	}
	return nil
}

// Rollback reverts the most recent applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	last := 0
	for v := range applied {
		if v > last {
			last = v
		}
	}
	if last == 0 {
		return nil
	}

	for _, mig := range m.migrations {
		if mig.Version != last {
			continue
		}
		return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.DownSQL); err != nil {
				return fmt.Errorf("failed to rollback migration %d: %w", last, err)
			}
			_, err := tx.Exec(ctx, "DELETE FROM "+migrationsTable+" WHERE version = $1", last)
			return err
		})
	}
	return fmt.Errorf("%w: unknown applied version %d", ErrMigrationFailed, last)
}

// Status reports which migrations are applied.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Migration, len(m.migrations))
	copy(out, m.migrations)
	for i := range out {
		if at, ok := applied[out[i].Version]; ok {
			out[i].IsApplied = true
			out[i].AppliedAt = at
		}
	}
	return out, nil
}

// GetMigrations returns the embedded schema in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_accounts", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_progress", UpSQL: migration002Up, DownSQL: migration002Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: ACCOUNTS AND PATHS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS accounts (
    username VARCHAR(64) PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    profile JSONB NOT NULL DEFAULT '{}'::jsonb,
    onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
    exported_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS learning_paths (
    id VARCHAR(64) NOT NULL,
    username VARCHAR(64) NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
    goal TEXT NOT NULL,
    content TEXT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'Active',
    ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
    career_readiness BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (username, id),

    CONSTRAINT valid_path_status CHECK (status IN ('Active', 'Completed', 'Archived'))
);

CREATE INDEX IF NOT EXISTS idx_learning_paths_created_at ON learning_paths(username, created_at);
`

const migration001Down = `
DROP TABLE IF EXISTS learning_paths;
DROP TABLE IF EXISTS accounts;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: ACTIVITY, SKILLS, ACHIEVEMENTS, GOALS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS activities (
    id VARCHAR(64) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
    date DATE NOT NULL,
    activity_type VARCHAR(20) NOT NULL,
    duration_minutes INTEGER NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,

    CONSTRAINT valid_duration CHECK (duration_minutes >= 0 AND duration_minutes <= 480)
);

CREATE INDEX IF NOT EXISTS idx_activities_user_date ON activities(user_id, date DESC);

CREATE TABLE IF NOT EXISTS streaks (
    user_id VARCHAR(64) PRIMARY KEY REFERENCES accounts(username) ON DELETE CASCADE,
    current_days INTEGER NOT NULL DEFAULT 0,
    longest_days INTEGER NOT NULL DEFAULT 0,
    computed_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE TABLE IF NOT EXISTS skill_progress (
    user_id VARCHAR(64) NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
    skill_key VARCHAR(128) NOT NULL,
    skill_name VARCHAR(128) NOT NULL,
    progress SMALLINT NOT NULL,
    experience_points INTEGER NOT NULL,
    last_updated TIMESTAMP WITH TIME ZONE NOT NULL,
    milestones JSONB NOT NULL DEFAULT '[]'::jsonb,
    PRIMARY KEY (user_id, skill_key),

    CONSTRAINT valid_progress CHECK (progress >= 0 AND progress <= 100),
    CONSTRAINT valid_xp CHECK (experience_points >= 0)
);

CREATE TABLE IF NOT EXISTS achievements (
    user_id VARCHAR(64) NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
    achievement_name TEXT NOT NULL,
    type VARCHAR(20) NOT NULL,
    date TIMESTAMP WITH TIME ZONE NOT NULL,
    icon VARCHAR(16) NOT NULL,
    PRIMARY KEY (user_id, achievement_name)
);

CREATE TABLE IF NOT EXISTS goals (
    id VARCHAR(64) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
    title TEXT NOT NULL,
    target_date DATE,
    status VARCHAR(20) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    achieved_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_goal_status CHECK (status IN ('Active', 'Achieved'))
);

CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
`

const migration002Down = `
DROP TABLE IF EXISTS goals;
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS skill_progress;
DROP TABLE IF EXISTS streaks;
DROP TABLE IF EXISTS activities;
`
