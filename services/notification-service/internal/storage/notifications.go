// Package storage persists the notification audit trail.
package storage

import (
	"context"

	"github.com/careloop/medbook/libs/db"
)

type Notification struct {
	BookingID string
	Channel   string
	Recipient string
	Subject   string
	Status    string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (booking_id, channel, recipient, subject, status)
		VALUES ($1, $2, $3, $4, $5)
	`, n.BookingID, n.Channel, n.Recipient, n.Subject, n.Status)
	return err
}
