package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
)

type doctorItem struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
}

// Doctors handles GET /api/v1/doctors, sorted by name case-insensitively.
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doctors, err := h.store.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("doctor list failed", "err", err)
		writeStorageFault(w)
		return
	}

	items := make([]doctorItem, 0, len(doctors))
	for _, d := range doctors {
		items = append(items, doctorItem{Name: d.Name, Email: d.Email, Specialization: d.Specialization})
	}
	writeJSON(w, http.StatusOK, items)
}

// Stats handles GET /api/v1/doctors/stats?doctor_name=&query_type=&condition_filter=.
// Counts are computed over full UTC calendar-day windows relative to the
// server's current date.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	doctorName := strings.TrimSpace(q.Get("doctor_name"))
	queryType := strings.TrimSpace(q.Get("query_type"))
	conditionFilter := strings.TrimSpace(q.Get("condition_filter"))

	doctor, err := h.store.FindDoctorByName(r.Context(), doctorName)
	if err != nil {
		if storage.IsNotFound(err) {
			writeJSON(w, http.StatusOK, map[string]any{"error": fmt.Sprintf("Doctor '%s' not found.", doctorName)})
			return
		}
		h.logger.Error("doctor lookup failed", "err", err)
		writeStorageFault(w)
		return
	}

	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	var (
		key    string
		count  int
		cerr   error
		extras map[string]any
	)
	switch queryType {
	case "visits_yesterday":
		key = "visits_yesterday"
		count, cerr = h.store.CountBookingsByStatus(r.Context(), doctor.ID, model.StatusCompleted, yesterday, dayEnd(yesterday))
	case "appointments_today":
		key = "appointments_today"
		count, cerr = h.store.CountBookingsByStatus(r.Context(), doctor.ID, model.StatusScheduled, today, dayEnd(today))
	case "appointments_tomorrow":
		key = "appointments_tomorrow"
		count, cerr = h.store.CountBookingsByStatus(r.Context(), doctor.ID, model.StatusScheduled, tomorrow, dayEnd(tomorrow))
	case "patients_with_condition":
		if conditionFilter == "" {
			writeJSON(w, http.StatusOK, map[string]any{"error": "Unknown query_type or missing condition_filter."})
			return
		}
		key = "patients_with_condition"
		count, cerr = h.store.CountBookingsWithCondition(r.Context(), doctor.ID, conditionFilter)
		extras = map[string]any{"condition": conditionFilter}
	default:
		writeJSON(w, http.StatusOK, map[string]any{"error": "Unknown query_type or missing condition_filter."})
		return
	}
	if cerr != nil {
		h.logger.Error("stats query failed", "err", cerr, "query_type", queryType)
		writeStorageFault(w)
		return
	}

	resp := map[string]any{key: count, "doctor": doctor.Name}
	for k, v := range extras {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}
