package storage

import (
	"context"
	"time"
)

// CountBookingsByStatus counts the doctor's bookings with the given status
// scheduled within [from, to].
func (r *Repository) CountBookingsByStatus(ctx context.Context, doctorID, status string, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM bookings
		WHERE doctor_id = $1 AND status = $2 AND scheduled_at >= $3 AND scheduled_at <= $4
	`, doctorID, status, from, to).Scan(&n)
	return n, err
}

// CountBookingsWithCondition counts the doctor's bookings whose free-text
// condition contains the filter, case-insensitively, across all statuses.
func (r *Repository) CountBookingsWithCondition(ctx context.Context, doctorID, filter string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM bookings
		WHERE doctor_id = $1 AND condition ILIKE '%' || $2 || '%'
	`, doctorID, filter).Scan(&n)
	return n, err
}
