package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/careloop/medbook/services/booking-service/internal/model"
)

func (r *Repository) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, COALESCE(specialization, '')
		FROM doctors
		ORDER BY lower(name) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Specialization); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindDoctorByName resolves a doctor by case-insensitive exact name first,
// then by substring match only when exactly one doctor matches. Ambiguous
// substrings ("Lee" hitting two doctors) resolve to ErrNotFound rather than
// silently picking one.
func (r *Repository) FindDoctorByName(ctx context.Context, name string) (model.Doctor, error) {
	var d model.Doctor
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, COALESCE(specialization, '')
		FROM doctors
		WHERE lower(name) = lower($1)
	`, name).Scan(&d.ID, &d.Name, &d.Email, &d.Specialization)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Doctor{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, COALESCE(specialization, '')
		FROM doctors
		WHERE name ILIKE '%' || $1 || '%'
		LIMIT 2
	`, name)
	if err != nil {
		return model.Doctor{}, err
	}
	defer rows.Close()

	var matches []model.Doctor
	for rows.Next() {
		var m model.Doctor
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Specialization); err != nil {
			return model.Doctor{}, err
		}
		matches = append(matches, m)
	}
	if rows.Err() != nil {
		return model.Doctor{}, rows.Err()
	}
	if len(matches) != 1 {
		return model.Doctor{}, ErrNotFound
	}
	return matches[0], nil
}

// ListActiveSlots returns the doctor's active template windows for a weekday
// (0=Monday..6=Sunday).
func (r *Repository) ListActiveSlots(ctx context.Context, doctorID string, weekday int) ([]model.AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, doctor_id::text, day_of_week, start_time, end_time, active
		FROM availability_slots
		WHERE doctor_id = $1 AND day_of_week = $2 AND active
		ORDER BY start_time ASC
	`, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AvailabilitySlot
	for rows.Next() {
		var s model.AvailabilitySlot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.Active); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
