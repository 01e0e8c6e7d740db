package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careloop/medbook/services/booking-service/internal/calendar"
	"github.com/careloop/medbook/services/booking-service/internal/model"
)

func postBook(t *testing.T, h *Handler, body string) (int, Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/book", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	var res Result
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("decode result: %v", err)
		}
	}
	return rec.Code, res
}

const validBook = `{
	"doctor_name": "Dr. Ahuja",
	"slot_time": "2pm",
	"date": "2026-03-02",
	"patient_name": "Jane Patient",
	"patient_email": "patient@example.com",
	"notes": "first visit",
	"condition": "hypertension"
}`

func TestBook_Success(t *testing.T) {
	store := seedStore()
	cal := &fakeCalendar{eventRef: "evt-123"}
	h := newTestHandler(store, cal, nil)

	code, res := postBook(t, h, validBook)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Booked 2026-03-02T14:00:00Z with Dr. Ahuja." {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if res.BookingID == "" {
		t.Fatal("expected booking id")
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(store.created))
	}
	b := store.created[0]
	if b.Status != model.StatusScheduled || b.CalendarEventID != "evt-123" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if !b.ScheduledAt.Equal(time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scheduled_at %s", b.ScheduledAt.Format(time.RFC3339))
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.EventType != "booking.appointment.booked.v1" || evt.AggregateID != res.BookingID {
		t.Fatalf("unexpected event %+v", evt)
	}
	var payload map[string]any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("event payload: %v", err)
	}
	if payload["scheduled_at"] != "2026-03-02T14:00:00Z" || payload["patient_email"] != "patient@example.com" {
		t.Fatalf("unexpected payload %v", payload)
	}

	if len(cal.created) != 1 {
		t.Fatalf("expected 1 calendar event, got %d", len(cal.created))
	}
}

func TestBook_SuccessRemovesSlotFromAvailability(t *testing.T) {
	store := seedStore()
	h := newTestHandler(store, calendar.Disabled{}, nil)

	if _, res := postBook(t, h, validBook); !res.Success {
		t.Fatalf("setup booking failed: %q", res.Message)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?doctor_name=Dr.+Ahuja&date=2026-03-02", nil)
	rec := httptest.NewRecorder()
	h.Availability(rec, req)

	var slots []string
	if err := json.NewDecoder(rec.Body).Decode(&slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	for _, s := range slots {
		if s == "14:00" {
			t.Fatal("booked slot still offered")
		}
	}
}

func TestBook_DuplicateReportsAlreadyBooked(t *testing.T) {
	store := seedStore()
	h := newTestHandler(store, calendar.Disabled{}, nil)

	if _, res := postBook(t, h, validBook); !res.Success {
		t.Fatalf("first booking failed: %q", res.Message)
	}
	_, res := postBook(t, h, validBook)
	if res.Success {
		t.Fatal("second identical booking should fail")
	}
	if res.Message != "You already have an appointment with this doctor at this date and time." {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestBook_MissingPatientInfo(t *testing.T) {
	h := newTestHandler(seedStore(), calendar.Disabled{}, nil)
	_, res := postBook(t, h, `{"doctor_name":"Dr. Ahuja","slot_time":"2pm","date":"tomorrow"}`)
	if res.Success || res.Message != "Patient name and email are required. Please sign in and try again." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBook_UnknownPatient(t *testing.T) {
	h := newTestHandler(seedStore(), calendar.Disabled{}, nil)
	body := strings.Replace(validBook, "patient@example.com", "stranger@example.com", 1)
	_, res := postBook(t, h, body)
	if res.Success || res.Message != "No account found with that email. Please sign up or log in first." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBook_InvalidTime(t *testing.T) {
	h := newTestHandler(seedStore(), calendar.Disabled{}, nil)
	body := strings.Replace(validBook, "2pm", "half past nine", 1)
	_, res := postBook(t, h, body)
	if res.Success || res.Message != "Invalid date or time format. Use HH:MM (e.g. 14:00), 2pm, or 2:00 PM." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBook_UnknownDoctor(t *testing.T) {
	h := newTestHandler(seedStore(), calendar.Disabled{}, nil)
	body := strings.Replace(validBook, "Dr. Ahuja", "Dr. Nobody", 1)
	_, res := postBook(t, h, body)
	if res.Success || res.Message != "Doctor 'Dr. Nobody' not found." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBook_SlotOutsideTemplate(t *testing.T) {
	h := newTestHandler(seedStore(), calendar.Disabled{}, nil)
	body := strings.Replace(validBook, "2pm", "8am", 1)
	_, res := postBook(t, h, body)
	if res.Success {
		t.Fatal("expected failure for slot outside template")
	}
	if !strings.HasPrefix(res.Message, "Slot 08:00 is not available. Available: [09:00,") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestBook_BusyWindowBlocksSlot(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: []calendar.Interval{
		{Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour)},
	}}
	h := newTestHandler(seedStore(), cal, nil)

	_, res := postBook(t, h, validBook)
	if res.Success {
		t.Fatal("expected failure for busy slot")
	}
	if !strings.Contains(res.Message, "not available") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestBook_CalendarFailuresDoNotBlock(t *testing.T) {
	store := seedStore()
	cal := &fakeCalendar{busyErr: errBoom, createErr: errBoom}
	h := newTestHandler(store, cal, nil)

	_, res := postBook(t, h, validBook)
	if !res.Success {
		t.Fatalf("booking should survive calendar outage, got %q", res.Message)
	}
	if store.created[0].CalendarEventID != "" {
		t.Fatalf("expected empty event ref, got %q", store.created[0].CalendarEventID)
	}
}

func TestBook_ConflictMapsToSlotTaken(t *testing.T) {
	store := seedStore()
	// Another request won the race between the checks and the insert.
	store.createErr = &pgconn.PgError{Code: "23505"}
	h := newTestHandler(store, calendar.Disabled{}, nil)

	code, res := postBook(t, h, validBook)
	if code != http.StatusOK {
		t.Fatalf("conflict must not be a 5xx, got %d", code)
	}
	if res.Success {
		t.Fatal("expected conflict failure")
	}
	if !strings.Contains(res.Message, "not available") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestBook_StorageFaultIsGeneric(t *testing.T) {
	store := seedStore()
	store.createErr = errBoom
	h := newTestHandler(store, calendar.Disabled{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/book", strings.NewReader(validBook))
	rec := httptest.NewRecorder()
	h.Book(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatal("internal error detail leaked to the client")
	}
}
