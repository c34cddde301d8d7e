package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// NewPostgresDB connects with retries so the service can start before the database.
func NewPostgresDB(cfg Config, logger *slog.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error
	maxRetries := 10

	for i := 1; i <= maxRetries; i++ {
		logger.Info("connecting to database", "attempt", i, "max_attempts", maxRetries, "host", cfg.Host)
		db, err = sqlx.Connect("postgres", cfg.DSN())

		if err == nil {
			logger.Info("database connected")

			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(25)
			db.SetConnMaxLifetime(5 * time.Minute)

			return db, nil
		}

		logger.Warn("database not ready yet, waiting 2 seconds", "err", err)
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect database: %w", err)
}

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS bookings (
	id            SERIAL PRIMARY KEY,
	customer_id   INTEGER NOT NULL,
	room_id       INTEGER NOT NULL REFERENCES rooms(id),
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	is_checked_in BOOLEAN NOT NULL DEFAULT FALSE,
	status        TEXT NOT NULL DEFAULT '',
	CHECK (start_date <= end_date)
);

CREATE INDEX IF NOT EXISTS bookings_room_dates_idx ON bookings (room_id, start_date, end_date) WHERE is_active;
`

func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// SeedRooms inserts rooms 1..n, leaving existing ones alone.
func SeedRooms(ctx context.Context, db *sqlx.DB, n int) error {
	_, err := db.ExecContext(ctx, `
	INSERT INTO rooms (id)
	SELECT generate_series(1, $1)
	ON CONFLICT (id) DO NOTHING
	`, n)
	if err != nil {
		return fmt.Errorf("failed to seed rooms: %w", err)
	}

	return nil
}
