package calendar

import (
	"context"
	"testing"
	"time"
)

func TestDisabledGateway(t *testing.T) {
	g := Disabled{}

	busy, err := g.BusyWindows(context.Background(), time.Now())
	if err != nil || len(busy) != 0 {
		t.Fatalf("disabled gateway must report a free day, got %v err=%v", busy, err)
	}

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	ref, err := g.CreateEvent(context.Background(), Event{DoctorName: "Dr. Ahuja", Start: start})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if ref != "stub_Dr. Ahuja_2026-03-02T14:00:00Z" {
		t.Fatalf("unexpected stub ref %q", ref)
	}
}
