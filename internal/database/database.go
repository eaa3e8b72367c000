package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens and pings the Postgres database at dbURL.
func Connect(ctx context.Context, dbURL string, log *zap.Logger) (*sqlx.DB, error) {
	log.Info("🔌 Connecting to database", zap.Int("url_length", len(dbURL)))

	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		log.Error("❌ Database connection failed", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.Error("❌ Database ping failed", zap.Error(err))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("✅ Database connection established")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS drivers (
		id SERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		contact_number TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'DRIVER',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
		updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS bins (
		id BIGSERIAL PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		status INT NOT NULL DEFAULT 0,
		last_updated TEXT NOT NULL,
		sensor_data TEXT NOT NULL DEFAULT ''
	)`,

	// One row per driver, upserted on every location_update frame
	`CREATE TABLE IF NOT EXISTS driver_current_location (
		driver_id INT PRIMARY KEY REFERENCES drivers(id) ON DELETE CASCADE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		heading DOUBLE PRECISION,
		speed DOUBLE PRECISION,
		accuracy DOUBLE PRECISION,
		bin_id BIGINT REFERENCES bins(id) ON DELETE SET NULL,
		timestamp BIGINT NOT NULL,
		is_connected BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_drivers_email_lower ON drivers(LOWER(email))`,
}

// Migrate creates the schema. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
