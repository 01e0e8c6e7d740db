package availability

import (
	"reflect"
	"testing"
	"time"
)

func TestExpandTemplate_FullDay(t *testing.T) {
	got := ExpandTemplate([]Window{{Start: "09:00", End: "17:00"}})
	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExpandTemplate_MergesAndSkipsMalformed(t *testing.T) {
	got := ExpandTemplate([]Window{
		{Start: "09:00", End: "11:00"},
		{Start: "10:00", End: "12:00"}, // overlaps, must dedupe
		{Start: "bad", End: "12:00"},
		{Start: "15:00", End: "15:00"}, // empty window
	})
	want := []string{"09:00", "10:00", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolve_DefaultsWhenNoTemplate(t *testing.T) {
	got := Resolve(nil, []string{"10:00"}, nil)
	want := []string{"09:00", "11:00", "14:00", "15:00", "16:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolve_BusyHourFloor(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	busy := []Interval{
		{Start: day.Add(13*time.Hour + 15*time.Minute), End: day.Add(15*time.Hour + 30*time.Minute)},
	}
	got := Resolve([]Window{{Start: "09:00", End: "17:00"}}, nil, busy)
	// 13:00 and 14:00 fall inside [13, 15); 15:00 survives the partial hour.
	want := []string{"09:00", "10:00", "11:00", "12:00", "15:00", "16:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolve_ExclusionOrderIndependent(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	template := []Window{{Start: "09:00", End: "12:00"}}
	booked := []string{"10:00"}
	busy := []Interval{{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)}}

	// 10:00 is excluded by both sources; the overlap must not matter.
	got := Resolve(template, booked, busy)
	want := []string{"09:00", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBusyHours_IgnoresEmptyWindows(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	got := BusyHours([]Interval{
		{Start: day.Add(10 * time.Hour), End: day.Add(10 * time.Hour)},
		{Start: day.Add(11 * time.Hour), End: day.Add(10 * time.Hour)},
	})
	if len(got) != 0 {
		t.Fatalf("expected no busy hours, got %v", got)
	}
}
