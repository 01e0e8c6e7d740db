// Package calendar integrates the external calendar the clinic shares with
// other scheduling tools. It is a best-effort oracle: reads fail open (an
// unreachable calendar never reduces availability) and event creation never
// blocks a booking.
package calendar

import (
	"context"
	"fmt"
	"time"
)

// Interval is a busy time range reported by the external calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Event is an appointment to mirror into the external calendar.
type Event struct {
	DoctorName   string
	PatientName  string
	PatientEmail string
	Start        time.Time
	End          time.Time
}

type Gateway interface {
	// BusyWindows returns the busy ranges on the configured calendar for the
	// given UTC day.
	BusyWindows(ctx context.Context, day time.Time) ([]Interval, error)
	// CreateEvent mirrors the appointment and returns the event reference.
	CreateEvent(ctx context.Context, evt Event) (string, error)
}

// Disabled is the gateway used when no calendar is configured: no busy
// windows, and a deterministic stub event reference so bookings still carry
// a traceable marker.
type Disabled struct{}

func (Disabled) BusyWindows(context.Context, time.Time) ([]Interval, error) {
	return nil, nil
}

func (Disabled) CreateEvent(_ context.Context, evt Event) (string, error) {
	return StubEventRef(evt.DoctorName, evt.Start), nil
}

func StubEventRef(doctorName string, start time.Time) string {
	return fmt.Sprintf("stub_%s_%s", doctorName, start.UTC().Format(time.RFC3339))
}
