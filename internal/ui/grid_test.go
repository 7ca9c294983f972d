package ui

import (
	"strings"
	"testing"

	"github.com/kshaw/monthgrid/internal/store"
)

func sampleMonth() store.MonthData {
	data := store.MonthData{
		Info: store.MonthInfo{Year: 2026, Month: 8, BestDay: 2},
		Habits: []store.Habit{
			{HabitNumber: 1, HabitName: "Run"},
			{HabitNumber: 2, HabitName: "Read"},
		},
	}
	data.Entries = []store.Entry{
		{Day: 1, DayName: "Sat", OneLiner: "lazy morning"},
		{Day: 2, DayName: "Sun", Habits: [5]bool{true, false}},
	}
	return data
}

func TestRenderMonthIncludesTitleAndLabels(t *testing.T) {
	out := RenderMonth(sampleMonth())

	if !strings.Contains(out, "August 2026") {
		t.Errorf("Expected title with month name, got:\n%s", out)
	}
	if !strings.Contains(out, "Run") || !strings.Contains(out, "Read") {
		t.Errorf("Expected habit labels in header, got:\n%s", out)
	}
	if !strings.Contains(out, "lazy morning") {
		t.Errorf("Expected one-liner in grid, got:\n%s", out)
	}
}

func TestRenderMonthMarksBestDay(t *testing.T) {
	out := RenderMonth(sampleMonth())

	if !strings.Contains(out, "★") {
		t.Errorf("Expected best day marker, got:\n%s", out)
	}
	if !strings.Contains(out, "best day: 2") {
		t.Errorf("Expected best day in title, got:\n%s", out)
	}
}

func TestRenderMonthChecks(t *testing.T) {
	out := RenderMonth(sampleMonth())

	if !strings.Contains(out, "✓") {
		t.Errorf("Expected a checkmark for completed habit, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer note than fits", 10, "a longer …"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
