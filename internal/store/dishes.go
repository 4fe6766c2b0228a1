package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
	"github.com/shopspring/decimal"
)

func CreateDish(ctx context.Context, db *sql.DB, providerID int64, name, description string, price decimal.Decimal) (*models.Dish, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", database.ErrValidation)
	}

	dish := &models.Dish{}

	query := `
		INSERT INTO dishes (provider_id, nombre, descripcion, precio, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, provider_id, nombre, COALESCE(descripcion, ''), precio, created_at`

	err := db.QueryRowContext(ctx, query, providerID, name, description, price).Scan(
		&dish.ID,
		&dish.ProviderID,
		&dish.Name,
		&dish.Description,
		&dish.Price,
		&dish.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}

	return dish, nil
}

func GetDish(ctx context.Context, db *sql.DB, id int64) (*models.Dish, error) {
	dish := &models.Dish{}

	query := `
		SELECT id, provider_id, nombre, COALESCE(descripcion, ''), precio, created_at
		FROM dishes
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&dish.ID,
		&dish.ProviderID,
		&dish.Name,
		&dish.Description,
		&dish.Price,
		&dish.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrDishNotFound
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}

	return dish, nil
}

func ListDishes(ctx context.Context, db *sql.DB, providerID int64) ([]models.Dish, error) {
	query := `
		SELECT id, provider_id, nombre, COALESCE(descripcion, ''), precio, created_at
		FROM dishes
		WHERE provider_id = $1
		ORDER BY nombre`

	rows, err := db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var dish models.Dish
		err := rows.Scan(
			&dish.ID,
			&dish.ProviderID,
			&dish.Name,
			&dish.Description,
			&dish.Price,
			&dish.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		dishes = append(dishes, dish)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return dishes, nil
}
