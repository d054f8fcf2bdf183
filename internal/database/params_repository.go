package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/versebot/pkg/models"
)

// ParamsRepository stores per-profile scheduler parameters. Weights live in
// explicit columns so the vector round-trips without any blob encoding.
type ParamsRepository struct {
	db *DB
}

// NewParamsRepository creates a new repository instance
func NewParamsRepository(db *DB) *ParamsRepository {
	return &ParamsRepository{db: db}
}

type paramsRow struct {
	Profile          string  `db:"profile"`
	W0               float64 `db:"w0"`
	W1               float64 `db:"w1"`
	W2               float64 `db:"w2"`
	W3               float64 `db:"w3"`
	W4               float64 `db:"w4"`
	W5               float64 `db:"w5"`
	W6               float64 `db:"w6"`
	W7               float64 `db:"w7"`
	W8               float64 `db:"w8"`
	W9               float64 `db:"w9"`
	W10              float64 `db:"w10"`
	W11              float64 `db:"w11"`
	RequestRetention float64 `db:"request_retention"`
}

// GetOrDefault returns the stored parameters for a profile, falling back to
// the stock defaults when no row exists
func (r *ParamsRepository) GetOrDefault(ctx context.Context, profile string) (models.Params, error) {
	var row paramsRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM fsrs_params WHERE profile = $1", profile)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultParams(), nil
	}
	if err != nil {
		return models.Params{}, fmt.Errorf("failed to get params for profile %s: %w", profile, err)
	}

	return models.Params{
		W: [12]float64{
			row.W0, row.W1, row.W2, row.W3, row.W4, row.W5,
			row.W6, row.W7, row.W8, row.W9, row.W10, row.W11,
		},
		RequestRetention: row.RequestRetention,
	}, nil
}

// Save stores a profile's parameters after validating them
func (r *ParamsRepository) Save(ctx context.Context, profile string, p models.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to save params for profile %s: %w", profile, err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fsrs_params (
			profile, w0, w1, w2, w3, w4, w5, w6, w7, w8, w9, w10, w11, request_retention
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (profile) DO UPDATE SET
			w0 = EXCLUDED.w0, w1 = EXCLUDED.w1, w2 = EXCLUDED.w2, w3 = EXCLUDED.w3,
			w4 = EXCLUDED.w4, w5 = EXCLUDED.w5, w6 = EXCLUDED.w6, w7 = EXCLUDED.w7,
			w8 = EXCLUDED.w8, w9 = EXCLUDED.w9, w10 = EXCLUDED.w10, w11 = EXCLUDED.w11,
			request_retention = EXCLUDED.request_retention`,
		profile, p.W[0], p.W[1], p.W[2], p.W[3], p.W[4], p.W[5],
		p.W[6], p.W[7], p.W[8], p.W[9], p.W[10], p.W[11], p.RequestRetention,
	)
	if err != nil {
		return fmt.Errorf("failed to save params for profile %s: %w", profile, err)
	}
	return nil
}
