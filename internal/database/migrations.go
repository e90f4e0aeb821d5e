package database

import (
	"fmt"
	"log/slog"
)

// DefaultTicketPrice is seeded into settings on first start, in cents
const DefaultTicketPrice = 1000

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		enablePgcrypto,
		createStudentsTable,
		createSalesTable,
		createSalesCreatedAtIndex,
		createSalesSeatsIndex,
		createSettingsTable,
		seedSettings,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const enablePgcrypto = `CREATE EXTENSION IF NOT EXISTS pgcrypto;`

const createStudentsTable = `
CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_name VARCHAR(255) NOT NULL,
    responsible_name VARCHAR(255) NOT NULL,
    phone VARCHAR(50) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// One row per sale; the seat list lives in the same row so a sale is recorded all or nothing.
const createSalesTable = `
CREATE TABLE IF NOT EXISTS sales (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    buyer_name VARCHAR(255) NOT NULL,
    buyer_phone VARCHAR(50) NOT NULL,
    student_id UUID REFERENCES students(id) ON DELETE SET NULL,
    seats TEXT[] NOT NULL CHECK (cardinality(seats) > 0),
    total_value BIGINT NOT NULL CHECK (total_value >= 0),
    sale_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createSalesCreatedAtIndex = `
CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC);`

const createSalesSeatsIndex = `
CREATE INDEX IF NOT EXISTS idx_sales_seats ON sales USING GIN (seats);`

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    ticket_price BIGINT NOT NULL CHECK (ticket_price >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

var seedSettings = fmt.Sprintf(`
INSERT INTO settings (id, ticket_price) VALUES (1, %d)
ON CONFLICT (id) DO NOTHING;`, DefaultTicketPrice)
