// Package field provides the data model for editable tracker fields.
//
// Every editable unit on the month grid is addressed by a composite Key
// (year/month/day/habit number as applicable) rather than a server-assigned
// row ID. The key is derived once from the bound element's attributes and is
// immutable afterwards.
package field

import (
	"fmt"
)

// HabitCount is the number of habit columns per month.
const HabitCount = 5

// Kind identifies one of the editable field kinds.
type Kind int

const (
	// KindOneLiner is the free-text daily note.
	KindOneLiner Kind = iota
	// KindHabitCheck is the boolean completion mark for one habit on one day.
	KindHabitCheck
	// KindHabitLabel is the display name of a habit column, scoped per month.
	KindHabitLabel
	// KindBestDay is the at-most-one "best day" selection per month.
	KindBestDay
	// KindJournal is the detailed daily journal text.
	KindJournal
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindOneLiner:
		return "one-liner"
	case KindHabitCheck:
		return "habit-check"
	case KindHabitLabel:
		return "habit-label"
	case KindBestDay:
		return "best-day"
	case KindJournal:
		return "journal"
	default:
		return "unknown"
	}
}

// Endpoint returns the mutation endpoint path for the kind.
func (k Kind) Endpoint() string {
	switch k {
	case KindOneLiner:
		return "/api/save-oneliner"
	case KindHabitCheck:
		return "/api/save-habit"
	case KindHabitLabel:
		return "/api/update-habit-name"
	case KindBestDay:
		return "/api/save-best-day"
	case KindJournal:
		return "/api/save-journal"
	default:
		return ""
	}
}

// Key uniquely addresses one editable unit.
//
// Day and Habit are zero when the kind does not use them: a habit label is
// keyed by (year, month, habit), a best-day selection by (year, month) alone.
type Key struct {
	Year  int
	Month int
	Day   int
	Habit int
}

// String formats the key for log lines.
func (k Key) String() string {
	s := fmt.Sprintf("%04d-%02d", k.Year, k.Month)
	if k.Day > 0 {
		s = fmt.Sprintf("%s-%02d", s, k.Day)
	}
	if k.Habit > 0 {
		s = fmt.Sprintf("%s/h%d", s, k.Habit)
	}
	return s
}

// Validate checks that the key carries the components the kind requires.
func (k Key) Validate(kind Kind) error {
	if k.Year < 1 {
		return fmt.Errorf("year is required")
	}
	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12 (got %d)", k.Month)
	}
	switch kind {
	case KindOneLiner, KindJournal:
		if k.Day < 1 || k.Day > 31 {
			return fmt.Errorf("day must be between 1 and 31 (got %d)", k.Day)
		}
	case KindHabitCheck:
		if k.Day < 1 || k.Day > 31 {
			return fmt.Errorf("day must be between 1 and 31 (got %d)", k.Day)
		}
		if k.Habit < 1 || k.Habit > HabitCount {
			return fmt.Errorf("habit number must be between 1 and %d (got %d)", HabitCount, k.Habit)
		}
	case KindHabitLabel:
		if k.Habit < 1 || k.Habit > HabitCount {
			return fmt.Errorf("habit number must be between 1 and %d (got %d)", HabitCount, k.Habit)
		}
	case KindBestDay:
		// Year and month alone address the selection.
	default:
		return fmt.Errorf("unknown field kind %d", kind)
	}
	return nil
}

// DefaultLabel is the display name a habit column falls back to when its
// label is cleared.
func DefaultLabel(habit int) string {
	return fmt.Sprintf("Habit %d", habit)
}

// OneLinerPayload is the wire body for saving a daily one-liner.
type OneLinerPayload struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Text  string `json:"text"`
}

// HabitCheckPayload is the wire body for saving a habit checkmark.
type HabitCheckPayload struct {
	Year        int  `json:"year"`
	Month       int  `json:"month"`
	Day         int  `json:"day"`
	HabitNumber int  `json:"habit_number"`
	Checked     bool `json:"checked"`
}

// HabitLabelPayload is the wire body for renaming a habit column.
type HabitLabelPayload struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	HabitNumber int    `json:"habit_number"`
	Name        string `json:"name"`
}

// BestDayPayload is the wire body for saving the best-day selection.
type BestDayPayload struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	BestDay int `json:"best_day"`
}

// JournalPayload is the wire body for saving the detailed journal.
type JournalPayload struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Text  string `json:"text"`
}

// PrevMonth returns the month preceding (year, month), wrapping the year.
func PrevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the month following (year, month), wrapping the year.
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
