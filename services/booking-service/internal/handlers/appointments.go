package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/storage"
)

const (
	// lookBack keeps same-day bookings visible near timezone boundaries.
	lookBack        = time.Hour
	maxAppointments = 20
)

type appointmentItem struct {
	Doctor    string `json:"doctor"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Notes     string `json:"notes"`
	Condition string `json:"condition"`
}

// MyAppointments handles GET /api/v1/appointments/mine?patient_email=.
// Returns the patient's SCHEDULED bookings from one hour ago onward,
// ascending, capped at 20. Unknown patients get an empty list.
func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("patient_email"))
	if email == "" {
		writeJSON(w, http.StatusOK, []appointmentItem{})
		return
	}

	patient, err := h.store.FindPatientByEmail(r.Context(), email)
	if err != nil {
		if storage.IsNotFound(err) {
			writeJSON(w, http.StatusOK, []appointmentItem{})
			return
		}
		h.logger.Error("patient lookup failed", "err", err)
		writeStorageFault(w)
		return
	}

	cutoff := h.now().Add(-lookBack)
	rows, err := h.store.ListUpcomingForPatient(r.Context(), patient.ID, cutoff, maxAppointments)
	if err != nil {
		h.logger.Error("appointments list failed", "err", err)
		writeStorageFault(w)
		return
	}

	items := make([]appointmentItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, appointmentItem{
			Doctor:    row.DoctorName,
			Date:      row.ScheduledAt.UTC().Format("2006-01-02"),
			Time:      row.ScheduledAt.UTC().Format("15:04"),
			Notes:     row.Notes,
			Condition: row.Condition,
		})
	}
	writeJSON(w, http.StatusOK, items)
}
