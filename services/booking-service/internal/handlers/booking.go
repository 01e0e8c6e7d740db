package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/calendar"
	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
	"github.com/careloop/medbook/services/booking-service/internal/timeparse"
)

const bookedEventType = "booking.appointment.booked.v1"

type bookRequest struct {
	DoctorName   string `json:"doctor_name"`
	SlotTime     string `json:"slot_time"`
	Date         string `json:"date"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	Notes        string `json:"notes"`
	Condition    string `json:"condition"`
}

// Book handles POST /api/v1/appointments/book. Preconditions run in a fixed
// order and the first failure short-circuits; the partial unique index on
// (doctor, scheduled_at, SCHEDULED) closes the window between the
// availability check and the insert under concurrent requests.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, Result{Success: false, Message: "Invalid request body."})
		return
	}
	req.DoctorName = strings.TrimSpace(req.DoctorName)
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)

	ctx := r.Context()

	// 1. The transaction never creates patients; booking requires an account.
	if req.PatientName == "" || req.PatientEmail == "" {
		writeResult(w, Result{Success: false, Message: "Patient name and email are required. Please sign in and try again."})
		return
	}
	patient, err := h.store.FindPatientByEmail(ctx, req.PatientEmail)
	if err != nil {
		if storage.IsNotFound(err) {
			writeResult(w, Result{Success: false, Message: "No account found with that email. Please sign up or log in first."})
			return
		}
		h.logger.Error("patient lookup failed", "err", err)
		writeStorageFault(w)
		return
	}

	// 2. Normalize the fuzzy date and time tokens.
	day, dateOK := timeparse.ParseDate(req.Date, h.now())
	hour, minute, timeOK := timeparse.ParseClock(req.SlotTime)
	if !dateOK || !timeOK {
		writeResult(w, Result{Success: false, Message: "Invalid date or time format. Use HH:MM (e.g. 14:00), 2pm, or 2:00 PM."})
		return
	}
	scheduledAt := timeparse.At(day, hour, minute)
	slotToken := timeparse.Canonical(hour, minute)

	// 3. Resolve the doctor.
	doctor, err := h.store.FindDoctorByName(ctx, req.DoctorName)
	if err != nil {
		if storage.IsNotFound(err) {
			writeResult(w, Result{Success: false, Message: fmt.Sprintf("Doctor '%s' not found.", req.DoctorName)})
			return
		}
		h.logger.Error("doctor lookup failed", "err", err)
		writeStorageFault(w)
		return
	}

	// 4. Idempotent-duplicate guard for the same patient. This runs before the
	// availability check: the patient's own booking already occupies the slot,
	// and retrying identical arguments must report the duplicate, not
	// "slot taken".
	dup, err := h.store.HasScheduledBooking(ctx, doctor.ID, patient.ID, scheduledAt)
	if err != nil {
		h.logger.Error("duplicate check failed", "err", err)
		writeStorageFault(w)
		return
	}
	if dup {
		writeResult(w, Result{Success: false, Message: "You already have an appointment with this doctor at this date and time."})
		return
	}

	// 5. The requested hour must be in the current availability set.
	available, err := h.resolveAvailability(ctx, doctor, day)
	if err != nil {
		h.logger.Error("availability resolution failed", "err", err, "doctor", doctor.Name)
		writeStorageFault(w)
		return
	}
	if !contains(available, slotToken) {
		writeResult(w, Result{Success: false, Message: slotTakenMessage(slotToken, available)})
		return
	}

	// Mirror into the external calendar, best-effort: a slow or failed oracle
	// must not block the booking, so a single attempt with a short deadline
	// and the booking proceeds without a reference on failure.
	eventRef := ""
	if h.cal != nil {
		calCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ref, err := h.cal.CreateEvent(calCtx, calendar.Event{
			DoctorName:   doctor.Name,
			PatientName:  patient.Name,
			PatientEmail: patient.Email,
			Start:        scheduledAt,
			End:          scheduledAt.Add(time.Hour),
		})
		cancel()
		if err != nil {
			h.logger.Warn("calendar event creation failed; booking proceeds without reference", "err", err)
		} else {
			eventRef = ref
		}
	}

	booking := &model.Booking{
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		ScheduledAt:     scheduledAt,
		Status:          model.StatusScheduled,
		Notes:           req.Notes,
		Condition:       req.Condition,
		CalendarEventID: eventRef,
	}
	id, err := h.store.CreateScheduledBooking(ctx, booking, func(bookingID string) outbox.Event {
		payload, _ := json.Marshal(map[string]any{
			"booking_id":    bookingID,
			"doctor_name":   doctor.Name,
			"doctor_email":  doctor.Email,
			"patient_name":  patient.Name,
			"patient_email": patient.Email,
			"scheduled_at":  scheduledAt.Format(time.RFC3339),
			"notes":         req.Notes,
			"condition":     req.Condition,
		})
		return outbox.Event{
			AggregateType: "booking",
			AggregateID:   bookingID,
			EventType:     bookedEventType,
			Payload:       payload,
		}
	})
	if err != nil {
		if storage.IsConflict(err) {
			writeResult(w, h.conflictResult(ctx, doctor, patient, day, scheduledAt, slotToken))
			return
		}
		h.logger.Error("booking insert failed", "err", err, "doctor", doctor.Name)
		writeStorageFault(w)
		return
	}

	writeResult(w, Result{
		Success:   true,
		Message:   fmt.Sprintf("Booked %s with %s.", scheduledAt.Format(time.RFC3339), doctor.Name),
		BookingID: id,
	})
}

// conflictResult distinguishes "you raced yourself" from "someone else took
// the slot" after the unique index rejected the insert.
func (h *Handler) conflictResult(ctx context.Context, doctor model.Doctor, patient model.Patient, day, scheduledAt time.Time, slotToken string) Result {
	dup, err := h.store.HasScheduledBooking(ctx, doctor.ID, patient.ID, scheduledAt)
	if err == nil && dup {
		return Result{Success: false, Message: "You already have an appointment with this doctor at this date and time."}
	}
	available, err := h.resolveAvailability(ctx, doctor, day)
	if err != nil {
		available = nil
	}
	return Result{Success: false, Message: slotTakenMessage(slotToken, available)}
}

func slotTakenMessage(slotToken string, available []string) string {
	return fmt.Sprintf("Slot %s is not available. Available: [%s].", slotToken, strings.Join(available, ", "))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
