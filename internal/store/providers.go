package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
)

func CreateProvider(ctx context.Context, db *sql.DB, name, address string) (*models.Provider, error) {
	provider := &models.Provider{}

	query := `
		INSERT INTO providers (nombre_emprendimiento, direccion, estado, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, nombre_emprendimiento, COALESCE(direccion, ''), estado, created_at`

	err := db.QueryRowContext(ctx, query, name, address, models.ProviderStatusPending).Scan(
		&provider.ID,
		&provider.Name,
		&provider.Address,
		&provider.Status,
		&provider.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	return provider, nil
}

func GetProvider(ctx context.Context, db *sql.DB, id int64) (*models.Provider, error) {
	provider := &models.Provider{}

	query := `
		SELECT id, nombre_emprendimiento, COALESCE(direccion, ''), estado, created_at
		FROM providers
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&provider.ID,
		&provider.Name,
		&provider.Address,
		&provider.Status,
		&provider.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProviderNotFound
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}

	return provider, nil
}

// ListProviders filters by estado when it is non-empty; the mobile app
// only surfaces approved providers to buyers.
func ListProviders(ctx context.Context, db *sql.DB, status string) ([]models.Provider, error) {
	query := `
		SELECT id, nombre_emprendimiento, COALESCE(direccion, ''), estado, created_at
		FROM providers
		WHERE ($1 = '' OR estado = $1)
		ORDER BY nombre_emprendimiento`

	rows, err := db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []models.Provider
	for rows.Next() {
		var provider models.Provider
		err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.Address,
			&provider.Status,
			&provider.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, provider)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return providers, nil
}

func UpdateProviderStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	if status != models.ProviderStatusPending &&
		status != models.ProviderStatusApproved &&
		status != models.ProviderStatusRejected {
		return fmt.Errorf("%w: unknown provider estado %q", database.ErrValidation, status)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE providers SET estado = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update provider status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProviderNotFound
	}

	return nil
}
