package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/careloop/medbook/services/booking-service/internal/model"
)

// FindPatientByEmail resolves a patient by exact email. The booking core never
// creates patients; registration is owned by the auth subsystem.
func (r *Repository) FindPatientByEmail(ctx context.Context, email string) (model.Patient, error) {
	email = strings.TrimSpace(email)
	var p model.Patient
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email
		FROM patients
		WHERE lower(email) = lower($1)
	`, email).Scan(&p.ID, &p.Name, &p.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Patient{}, ErrNotFound
	}
	if err != nil {
		return model.Patient{}, err
	}
	return p, nil
}
