package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/calendar"
	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
)

// testNow is a Monday, well before any offered slot.
var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	doctors  []model.Doctor
	patients []model.Patient
	slots    []model.AvailabilitySlot
	bookings []model.Booking
	upcoming []storage.Upcoming

	createErr    error
	created      []model.Booking
	events       []outbox.Event
	statusCounts map[string]int
	condCount    int

	gotCutoff time.Time
	gotLimit  int
}

func (f *fakeStore) ListDoctors(context.Context) ([]model.Doctor, error) {
	return f.doctors, nil
}

func (f *fakeStore) FindDoctorByName(_ context.Context, name string) (model.Doctor, error) {
	for _, d := range f.doctors {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	var match model.Doctor
	matches := 0
	for _, d := range f.doctors {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			match = d
			matches++
		}
	}
	if matches != 1 {
		return model.Doctor{}, storage.ErrNotFound
	}
	return match, nil
}

func (f *fakeStore) FindPatientByEmail(_ context.Context, email string) (model.Patient, error) {
	for _, p := range f.patients {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return model.Patient{}, storage.ErrNotFound
}

func (f *fakeStore) ListActiveSlots(_ context.Context, doctorID string, weekday int) ([]model.AvailabilitySlot, error) {
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.DoctorID == doctorID && s.DayOfWeek == weekday {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookedTimes(_ context.Context, doctorID string, from, to time.Time) ([]string, error) {
	var out []string
	for _, b := range f.allBookings() {
		if b.DoctorID == doctorID && b.Status == model.StatusScheduled &&
			!b.ScheduledAt.Before(from) && !b.ScheduledAt.After(to) {
			out = append(out, b.ScheduledAt.UTC().Format("15:04"))
		}
	}
	return out, nil
}

func (f *fakeStore) HasScheduledBooking(_ context.Context, doctorID, patientID string, at time.Time) (bool, error) {
	for _, b := range f.allBookings() {
		if b.DoctorID == doctorID && b.PatientID == patientID &&
			b.ScheduledAt.Equal(at) && b.Status == model.StatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateScheduledBooking(_ context.Context, b *model.Booking, makeEvent func(string) outbox.Event) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "booking-1"
	stored := *b
	stored.ID = id
	f.created = append(f.created, stored)
	if makeEvent != nil {
		f.events = append(f.events, makeEvent(id))
	}
	return id, nil
}

func (f *fakeStore) ListUpcomingForPatient(_ context.Context, _ string, cutoff time.Time, limit int) ([]storage.Upcoming, error) {
	f.gotCutoff = cutoff
	f.gotLimit = limit
	return f.upcoming, nil
}

func (f *fakeStore) CountBookingsByStatus(_ context.Context, _ string, status string, _, _ time.Time) (int, error) {
	return f.statusCounts[status], nil
}

func (f *fakeStore) CountBookingsWithCondition(_ context.Context, _ string, _ string) (int, error) {
	return f.condCount, nil
}

// allBookings merges the seeded and newly created bookings, so availability
// reflects a booking made earlier in the same test.
func (f *fakeStore) allBookings() []model.Booking {
	return append(append([]model.Booking{}, f.bookings...), f.created...)
}

type fakeCalendar struct {
	busy      []calendar.Interval
	busyErr   error
	eventRef  string
	createErr error
	created   []calendar.Event
}

func (f *fakeCalendar) BusyWindows(context.Context, time.Time) ([]calendar.Interval, error) {
	return f.busy, f.busyErr
}

func (f *fakeCalendar) CreateEvent(_ context.Context, evt calendar.Event) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, evt)
	return f.eventRef, nil
}

type fakeReporter struct {
	ok          bool
	lastChannel string
	lastText    string
}

func (f *fakeReporter) Send(_ context.Context, channel, text string) bool {
	f.lastChannel = channel
	f.lastText = text
	return f.ok
}

func newTestHandler(store *fakeStore, cal calendar.Gateway, report ReportSender) *Handler {
	if report == nil {
		report = &fakeReporter{ok: true}
	}
	h := New(store, cal, report, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return testNow }
	return h
}

// seedStore returns a store with one doctor on a Mon-Fri 09:00-17:00 template
// and one registered patient.
func seedStore() *fakeStore {
	s := &fakeStore{
		doctors: []model.Doctor{
			{ID: "doc-1", Name: "Dr. Ahuja", Email: "ahuja@medbook.local", Specialization: "Cardiology"},
		},
		patients: []model.Patient{
			{ID: "pat-1", Name: "Jane Patient", Email: "patient@example.com"},
		},
	}
	for dow := 0; dow < 5; dow++ {
		s.slots = append(s.slots, model.AvailabilitySlot{
			ID: "slot", DoctorID: "doc-1", DayOfWeek: dow,
			StartTime: "09:00", EndTime: "17:00", Active: true,
		})
	}
	return s
}

var errBoom = errors.New("boom")
