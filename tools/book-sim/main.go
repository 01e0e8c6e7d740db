// book-sim posts a booking request against a running booking-service and
// prints the structured result. Useful for smoke-testing the conflict path:
// run it twice with the same slot and the second run should report the
// duplicate message.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:8083"), "booking service base url")
		doctor  = flag.String("doctor", getenv("DOCTOR_NAME", "Dr. Ahuja"), "doctor name")
		slot    = flag.String("slot", getenv("SLOT_TIME", "10:00"), "slot time (HH:MM, 2pm, 2:00 PM)")
		date    = flag.String("date", getenv("DATE", "tomorrow"), "date (YYYY-MM-DD, today, tomorrow)")
		name    = flag.String("patient-name", getenv("PATIENT_NAME", "Jane Patient"), "patient name")
		email   = flag.String("patient-email", getenv("PATIENT_EMAIL", "patient@example.com"), "patient email")
		notes   = flag.String("notes", "", "booking notes")
	)
	flag.Parse()

	payload, err := json.Marshal(map[string]string{
		"doctor_name":   *doctor,
		"slot_time":     *slot,
		"date":          *date,
		"patient_name":  *name,
		"patient_email": *email,
		"notes":         *notes,
	})
	if err != nil {
		fatal(err.Error())
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(strings.TrimRight(*baseURL, "/")+"/api/v1/appointments/book", "application/json", bytes.NewReader(payload))
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Printf("status=%d body=%s\n", resp.StatusCode, strings.TrimSpace(string(body)))
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
