package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
)

// GetInventory returns the record for (dish, provider), or a zero-quantity
// record when none exists yet.
func GetInventory(ctx context.Context, db *sql.DB, dishID, providerID int64) (*models.InventoryRecord, error) {
	record := &models.InventoryRecord{}

	err := db.QueryRowContext(ctx,
		`SELECT id, dish_id, provider_id, cantidad, updated_at
		 FROM dish_inventory
		 WHERE dish_id = $1 AND provider_id = $2`,
		dishID, providerID).Scan(
		&record.ID,
		&record.DishID,
		&record.ProviderID,
		&record.Quantity,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.InventoryRecord{DishID: dishID, ProviderID: providerID}, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}

	return record, nil
}

// AdjustInventory applies a signed stock change for (dish, provider),
// rejecting any change that would leave the quantity negative, and writes
// an audit row to dish_inventory_log. Upserts the record on first use.
func AdjustInventory(ctx context.Context, db *sql.DB, dishID, providerID int64, change int, reason string) (*models.InventoryRecord, error) {
	if change == 0 {
		return nil, fmt.Errorf("%w: stock change must be non-zero", database.ErrValidation)
	}

	record := &models.InventoryRecord{}

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var quantity int
		err := tx.QueryRowContext(ctx,
			`SELECT cantidad FROM dish_inventory
			 WHERE dish_id = $1 AND provider_id = $2
			 FOR UPDATE`,
			dishID, providerID).Scan(&quantity)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock inventory: %w", err)
		}

		resulting := quantity + change
		if resulting < 0 {
			return fmt.Errorf("%w: stock would become negative (%d)", database.ErrValidation, resulting)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO dish_inventory (dish_id, provider_id, cantidad, updated_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (dish_id, provider_id)
			 DO UPDATE SET cantidad = $3, updated_at = NOW()
			 RETURNING id, dish_id, provider_id, cantidad, updated_at`,
			dishID, providerID, resulting).Scan(
			&record.ID,
			&record.DishID,
			&record.ProviderID,
			&record.Quantity,
			&record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert inventory: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO dish_inventory_log (dish_id, provider_id, cambio, cantidad_resultante, motivo, fecha)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			dishID, providerID, change, resulting, reason)
		if err != nil {
			return fmt.Errorf("log inventory change: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

func ListInventoryLog(ctx context.Context, db *sql.DB, dishID, providerID int64) ([]models.InventoryLogEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, dish_id, provider_id, cambio, cantidad_resultante, COALESCE(motivo, ''), fecha
		 FROM dish_inventory_log
		 WHERE dish_id = $1 AND provider_id = $2
		 ORDER BY fecha DESC, id DESC`,
		dishID, providerID)
	if err != nil {
		return nil, fmt.Errorf("list inventory log: %w", err)
	}
	defer rows.Close()

	var entries []models.InventoryLogEntry
	for rows.Next() {
		var entry models.InventoryLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.DishID,
			&entry.ProviderID,
			&entry.Change,
			&entry.Resulting,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
