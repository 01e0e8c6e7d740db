// Package handlers exposes the booking core's operations to the agent layer.
//
// Every user-correctable failure comes back as a structured
// {success:false, message} body with HTTP 200: the calling agent relays the
// message text verbatim to the end user. Only storage faults produce a 5xx,
// and those carry a generic message with the detail kept in the logs.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/calendar"
	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
)

// Store is the persistence surface the handlers need; *storage.Repository
// implements it.
type Store interface {
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	FindDoctorByName(ctx context.Context, name string) (model.Doctor, error)
	FindPatientByEmail(ctx context.Context, email string) (model.Patient, error)
	ListActiveSlots(ctx context.Context, doctorID string, weekday int) ([]model.AvailabilitySlot, error)
	ListBookedTimes(ctx context.Context, doctorID string, from, to time.Time) ([]string, error)
	HasScheduledBooking(ctx context.Context, doctorID, patientID string, at time.Time) (bool, error)
	CreateScheduledBooking(ctx context.Context, b *model.Booking, makeEvent func(bookingID string) outbox.Event) (string, error)
	ListUpcomingForPatient(ctx context.Context, patientID string, cutoff time.Time, limit int) ([]storage.Upcoming, error)
	CountBookingsByStatus(ctx context.Context, doctorID, status string, from, to time.Time) (int, error)
	CountBookingsWithCondition(ctx context.Context, doctorID, filter string) (int, error)
}

// ReportSender delivers doctor reports; *notify.Reporter implements it.
type ReportSender interface {
	Send(ctx context.Context, channel, text string) bool
}

type Handler struct {
	store  Store
	cal    calendar.Gateway
	report ReportSender
	logger *slog.Logger
	now    func() time.Time
}

func New(store Store, cal calendar.Gateway, report ReportSender, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		cal:    cal,
		report: report,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func dayEnd(dayStart time.Time) time.Time {
	return dayStart.Add(24*time.Hour - time.Second)
}
