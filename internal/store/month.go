package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kshaw/monthgrid/internal/field"
)

// MonthInfo is the month header row.
type MonthInfo struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	BestDay int `json:"best_day,omitempty"`
}

// Habit is one habit column of a month.
type Habit struct {
	HabitNumber int    `json:"habit_number"`
	HabitName   string `json:"habit_name"`
}

// Entry is one day row of a month.
type Entry struct {
	Day       int                    `json:"day"`
	DayName   string                 `json:"day_name"`
	OneLiner  string                 `json:"one_liner"`
	Journal   string                 `json:"detailed_journal"`
	WordCount int                    `json:"word_count"`
	Habits    [field.HabitCount]bool `json:"habits"`
}

// MonthData is the complete read model for one month.
type MonthData struct {
	Info    MonthInfo `json:"month_info"`
	Habits  []Habit   `json:"habits"`
	Entries []Entry   `json:"entries"`
}

// MonthData loads (and if necessary creates) the month and returns its
// habits and daily entries ordered by habit number and day.
func (s *Store) MonthData(ctx context.Context, year, month int) (MonthData, error) {
	monthID, err := s.GetOrCreateMonth(ctx, year, month)
	if err != nil {
		return MonthData{}, err
	}

	data := MonthData{Info: MonthInfo{Year: year, Month: month}}

	var bestDay sql.NullInt64
	if err := s.conn.QueryRowContext(ctx,
		`SELECT best_day FROM months WHERE id = ?`, monthID).Scan(&bestDay); err != nil {
		return MonthData{}, fmt.Errorf("failed to read month info: %w", err)
	}
	if bestDay.Valid {
		data.Info.BestDay = int(bestDay.Int64)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT habit_number, habit_name FROM habits WHERE month_id = ? ORDER BY habit_number`, monthID)
	if err != nil {
		return MonthData{}, fmt.Errorf("failed to read habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h Habit
		var name sql.NullString
		if err := rows.Scan(&h.HabitNumber, &name); err != nil {
			return MonthData{}, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.HabitName = name.String
		data.Habits = append(data.Habits, h)
	}
	if err := rows.Err(); err != nil {
		return MonthData{}, fmt.Errorf("failed to iterate habits: %w", err)
	}

	entryRows, err := s.conn.QueryContext(ctx,
		`SELECT day, one_liner, detailed_journal, word_count,
		        habit1, habit2, habit3, habit4, habit5
		 FROM daily_entries WHERE month_id = ? ORDER BY day`, monthID)
	if err != nil {
		return MonthData{}, fmt.Errorf("failed to read entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var e Entry
		var oneLiner, journal sql.NullString
		var checks [field.HabitCount]int
		if err := entryRows.Scan(&e.Day, &oneLiner, &journal, &e.WordCount,
			&checks[0], &checks[1], &checks[2], &checks[3], &checks[4]); err != nil {
			return MonthData{}, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.OneLiner = oneLiner.String
		e.Journal = journal.String
		for i, v := range checks {
			e.Habits[i] = v != 0
		}
		e.DayName = DayName(year, month, e.Day)
		data.Entries = append(data.Entries, e)
	}
	if err := entryRows.Err(); err != nil {
		return MonthData{}, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return data, nil
}

// DayName returns the short weekday name for a date, or an empty string for
// dates that don't exist (months seed all 31 day rows regardless of length).
func DayName(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return ""
	}
	return d.Format("Mon")
}
