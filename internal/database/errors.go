package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// Domain sentinels surfaced to the HTTP layer for status mapping.
var (
	ErrValidation            = errors.New("validation failed")
	ErrUserNotFound          = errors.New("user not found")
	ErrProviderNotFound      = errors.New("provider not found")
	ErrDishNotFound          = errors.New("dish not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrRouteNotFound         = errors.New("route not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)
