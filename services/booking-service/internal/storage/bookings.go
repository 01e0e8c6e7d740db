package storage

import (
	"context"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
)

// CreateScheduledBooking inserts a SCHEDULED booking and its domain event in
// one transaction. makeEvent receives the generated booking id. The partial
// unique index on (doctor_id, scheduled_at) WHERE status='SCHEDULED' is the
// serialization point that closes the check-then-write race: concurrent
// requests for the same slot surface here as a conflict error (IsConflict).
func (r *Repository) CreateScheduledBooking(ctx context.Context, b *model.Booking, makeEvent func(bookingID string) outbox.Event) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (doctor_id, patient_id, scheduled_at, status, notes, condition, calendar_event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text
	`, b.DoctorID, b.PatientID, b.ScheduledAt, b.Status, b.Notes, b.Condition, b.CalendarEventID).Scan(&id)
	if err != nil {
		return "", err
	}

	if makeEvent != nil {
		if err := r.outbox.Insert(ctx, tx, makeEvent(id)); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// HasScheduledBooking reports whether the patient already holds a SCHEDULED
// booking with this doctor at exactly this instant (the idempotent-duplicate
// guard, distinct from the general slot-taken case).
func (r *Repository) HasScheduledBooking(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE doctor_id = $1 AND patient_id = $2 AND scheduled_at = $3 AND status = 'SCHEDULED'
		)
	`, doctorID, patientID, at).Scan(&exists)
	return exists, err
}

// ListBookedTimes returns the "HH:MM" tokens of SCHEDULED bookings for the
// doctor within [from, to].
func (r *Repository) ListBookedTimes(ctx context.Context, doctorID string, from, to time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(scheduled_at, 'HH24:MI')
		FROM bookings
		WHERE doctor_id = $1 AND scheduled_at >= $2 AND scheduled_at <= $3 AND status = 'SCHEDULED'
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Upcoming is one row of a patient's appointment list.
type Upcoming struct {
	DoctorName  string
	ScheduledAt time.Time
	Notes       string
	Condition   string
}

// ListUpcomingForPatient returns the patient's SCHEDULED bookings with
// scheduled_at >= cutoff, ascending, capped at limit.
func (r *Repository) ListUpcomingForPatient(ctx context.Context, patientID string, cutoff time.Time, limit int) ([]Upcoming, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT d.name, b.scheduled_at, COALESCE(b.notes, ''), COALESCE(b.condition, '')
		FROM bookings b
		JOIN doctors d ON d.id = b.doctor_id
		WHERE b.patient_id = $1 AND b.status = 'SCHEDULED' AND b.scheduled_at >= $2
		ORDER BY b.scheduled_at ASC
		LIMIT $3
	`, patientID, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Upcoming
	for rows.Next() {
		var u Upcoming
		if err := rows.Scan(&u.DoctorName, &u.ScheduledAt, &u.Notes, &u.Condition); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
