package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type reportRequest struct {
	Channel    string `json:"channel"`
	ReportText string `json:"report_text"`
}

type reportResponse struct {
	Success bool   `json:"success"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// SendReport handles POST /api/v1/reports/send. The "slack" channel posts to
// the configured webhook; any other channel is a log-only stub that still
// reports success.
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, reportResponse{Success: false, Message: "Invalid request body."})
		return
	}
	channel := strings.TrimSpace(req.Channel)

	ok := h.report.Send(r.Context(), channel, req.ReportText)
	msg := "Report sent."
	if !ok {
		msg = "Failed."
	}
	writeJSON(w, http.StatusOK, reportResponse{Success: ok, Channel: channel, Message: msg})
}
