package handlers

import (
	"encoding/json"
	"net/http"
)

// Result is the structured outcome relayed verbatim by the calling agent.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BookingID string `json:"booking_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, res Result) {
	writeJSON(w, http.StatusOK, res)
}

// writeStorageFault hides internal detail behind a generic failure result.
func writeStorageFault(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, Result{
		Success: false,
		Message: "Something went wrong. Please try again.",
	})
}
