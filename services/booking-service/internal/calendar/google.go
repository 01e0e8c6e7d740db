package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleGateway talks to Google Calendar v3 with service-account credentials.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleGateway builds the gateway from a service-account JSON key file.
// calendarID may be "primary" or an explicit calendar id.
func NewGoogleGateway(ctx context.Context, credentialsFile, calendarID string) (*GoogleGateway, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarEventsScope, gcal.CalendarReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	return &GoogleGateway{svc: svc, calendarID: calendarID}, nil
}

func (g *GoogleGateway) BusyWindows(ctx context.Context, day time.Time) ([]Interval, error) {
	day = day.UTC()
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24*time.Hour - time.Second)

	resp, err := g.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: startOfDay.Format(time.RFC3339),
		TimeMax: endOfDay.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: g.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, nil
	}
	var out []Interval
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		out = append(out, Interval{Start: start, End: end})
	}
	return out, nil
}

func (g *GoogleGateway) CreateEvent(ctx context.Context, evt Event) (string, error) {
	end := evt.End
	if !end.After(evt.Start) {
		end = evt.Start.Add(time.Hour)
	}
	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     fmt.Sprintf("Appointment: %s with %s", evt.PatientName, evt.DoctorName),
		Description: fmt.Sprintf("Patient: %s (%s)", evt.PatientName, evt.PatientEmail),
		Start: &gcal.EventDateTime{
			DateTime: evt.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: []*gcal.EventAttendee{
			{Email: evt.PatientEmail, DisplayName: evt.PatientName},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}
