// Package ui renders a month of tracker data as a terminal grid.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kshaw/monthgrid/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	uncheckedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	bestDayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// noteWidth caps the one-liner column.
const noteWidth = 40

// RenderMonth produces a multi-line grid for one month: a title row, the
// habit labels, and one row per day with checkmarks and the daily one-liner.
// The best day, if set, is marked with a star.
func RenderMonth(data store.MonthData) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", time.Month(data.Info.Month), data.Info.Year)
	if data.Info.BestDay > 0 {
		title += bestDayStyle.Render(fmt.Sprintf("  ★ best day: %d", data.Info.BestDay))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(habitHeader(data.Habits)))
	b.WriteString("\n")

	for _, e := range data.Entries {
		b.WriteString(renderEntry(e, data.Info.BestDay))
		b.WriteString("\n")
	}

	return b.String()
}

func habitHeader(habits []store.Habit) string {
	cols := make([]string, 0, len(habits)+1)
	cols = append(cols, fmt.Sprintf("%-8s", "day"))
	for _, h := range habits {
		cols = append(cols, fmt.Sprintf("%-10s", truncate(h.HabitName, 10)))
	}
	cols = append(cols, "note")
	return strings.Join(cols, " ")
}

func renderEntry(e store.Entry, bestDay int) string {
	day := fmt.Sprintf("%2d %-3s  ", e.Day, e.DayName)
	if e.Day == bestDay {
		day = bestDayStyle.Render(fmt.Sprintf("%2d %-3s ★", e.Day, e.DayName))
	}

	cols := make([]string, 0, len(e.Habits)+2)
	cols = append(cols, day)
	for _, checked := range e.Habits {
		mark := uncheckedStyle.Render("·")
		if checked {
			mark = checkedStyle.Render("✓")
		}
		cols = append(cols, mark+strings.Repeat(" ", 9))
	}
	cols = append(cols, noteStyle.Render(truncate(e.OneLiner, noteWidth)))
	return strings.TrimRight(strings.Join(cols, " "), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
