// Package model holds the persistent records of the booking core.
//
// All instants are stored and compared in UTC. "today"/"tomorrow" in the API
// resolve against the server's UTC clock; callers in other timezones may see
// off-by-one-day behavior near midnight.
package model

import "time"

type Doctor struct {
	ID             string
	Name           string
	Email          string
	Specialization string
}

type Patient struct {
	ID    string
	Name  string
	Email string
}

// AvailabilitySlot is one recurring weekly availability window of a doctor,
// independent of any specific date. DayOfWeek is 0=Monday..6=Sunday.
// Invariant: StartTime < EndTime. Windows expand into hourly offerings.
type AvailabilitySlot struct {
	ID        string
	DoctorID  string
	DayOfWeek int
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM", exclusive
	Active    bool
}

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Booking is an appointment of a patient with a doctor. Bookings are never
// deleted; cancellation is a status transition. At most one SCHEDULED booking
// may exist per (doctor, scheduled instant) — enforced by a partial unique
// index in the store.
type Booking struct {
	ID              string
	DoctorID        string
	PatientID       string
	ScheduledAt     time.Time
	Status          string
	Notes           string
	Condition       string
	CalendarEventID string
	CreatedAt       time.Time
}
