package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
)

func CreateUser(ctx context.Context, db *sql.DB, fullName, email, address string) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (nombre_completo, email, direccion_habitacion, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, nombre_completo, email, COALESCE(direccion_habitacion, ''), created_at`

	err := db.QueryRowContext(ctx, query, fullName, email, address).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Address,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, nombre_completo, email, COALESCE(direccion_habitacion, ''), created_at
		FROM users
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Address,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
