// Package storage is the pgx-backed persistence layer of the booking core.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careloop/medbook/libs/db"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
)

// ErrNotFound is returned when a lookup matches no row, or matches more than
// one row for name lookups that must be unambiguous.
var ErrNotFound = errors.New("not found")

type Repository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewRepository(pool *db.Pool, outboxRepo *outbox.Repository) *Repository {
	return &Repository{pool: pool, outbox: outboxRepo}
}

// IsConflict reports whether err is the store rejecting a second SCHEDULED
// booking for the same (doctor, scheduled instant). 23505 is the partial
// unique index, 23P01 an exclusion constraint if one is configured instead.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
