package repository

import (
	"context"
	"database/sql"

	"boxoffice/internal/database"
	"boxoffice/internal/models"
)

const settingsID = 1

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the single settings row, nil when migrations have not seeded it
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	s := &models.Settings{}
	query := `SELECT id, ticket_price, updated_at FROM settings WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, settingsID).Scan(&s.ID, &s.TicketPrice, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return s, err
}

func (r *SettingsRepository) UpdateTicketPrice(ctx context.Context, price int64) (*models.Settings, error) {
	s := &models.Settings{}
	query := `
		INSERT INTO settings (id, ticket_price, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET ticket_price = EXCLUDED.ticket_price, updated_at = NOW()
		RETURNING id, ticket_price, updated_at`

	err := r.db.QueryRowContext(ctx, query, settingsID, price).Scan(&s.ID, &s.TicketPrice, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return s, nil
}
