package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/careloop/medbook/services/booking-service/internal/availability"
	"github.com/careloop/medbook/services/booking-service/internal/model"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
	"github.com/careloop/medbook/services/booking-service/internal/timeparse"
)

// Availability handles GET /api/v1/availability?doctor_name=&date=.
// Unknown doctors and unparseable dates yield an empty list, not an error:
// the agent treats both as "nothing bookable".
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doctorName := strings.TrimSpace(r.URL.Query().Get("doctor_name"))
	dateToken := strings.TrimSpace(r.URL.Query().Get("date"))

	day, ok := timeparse.ParseDate(dateToken, h.now())
	if doctorName == "" || !ok {
		writeJSON(w, http.StatusOK, []string{})
		return
	}

	doctor, err := h.store.FindDoctorByName(r.Context(), doctorName)
	if err != nil {
		if storage.IsNotFound(err) {
			writeJSON(w, http.StatusOK, []string{})
			return
		}
		h.logger.Error("doctor lookup failed", "err", err)
		writeStorageFault(w)
		return
	}

	slots, err := h.resolveAvailability(r.Context(), doctor, day)
	if err != nil {
		h.logger.Error("availability resolution failed", "err", err, "doctor", doctor.Name)
		writeStorageFault(w)
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// resolveAvailability merges the weekly template, booked slots, and external
// busy windows for one doctor-day. The calendar contribution fails open: if
// the oracle is down or unconfigured its busy set is empty, so availability
// never becomes unavailable because the integration is.
func (h *Handler) resolveAvailability(ctx context.Context, doctor model.Doctor, day time.Time) ([]string, error) {
	slots, err := h.store.ListActiveSlots(ctx, doctor.ID, timeparse.Weekday(day))
	if err != nil {
		return nil, err
	}
	windows := make([]availability.Window, 0, len(slots))
	for _, s := range slots {
		windows = append(windows, availability.Window{Start: s.StartTime, End: s.EndTime})
	}

	booked, err := h.store.ListBookedTimes(ctx, doctor.ID, day, dayEnd(day))
	if err != nil {
		return nil, err
	}

	var busy []availability.Interval
	if h.cal != nil {
		calCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ranges, err := h.cal.BusyWindows(calCtx, day)
		cancel()
		if err != nil {
			h.logger.Warn("calendar busy lookup failed; treating day as free", "err", err)
		} else {
			for _, iv := range ranges {
				busy = append(busy, availability.Interval{Start: iv.Start, End: iv.End})
			}
		}
	}

	return availability.Resolve(windows, booked, busy), nil
}
