package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/kshaw/monthgrid/internal/config"
	"github.com/kshaw/monthgrid/internal/field"
	"github.com/kshaw/monthgrid/internal/store"
)

var habitsCmd = &cobra.Command{
	Use:   "habits",
	Short: "Edit the habit column labels for a month",
	Long: `Open an interactive form to rename the habit columns of a month.
Clearing a label resets it to its default name.

Example usage:
  monthgrid habits
  monthgrid habits --year 2026 --month 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		now := time.Now()
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		if month < 1 || month > 12 {
			return fmt.Errorf("month must be between 1 and 12 (got %d)", month)
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer st.Close()

		if err := st.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := st.MonthData(ctx, year, month)
		if err != nil {
			return fmt.Errorf("failed to load month: %w", err)
		}

		names := make([]string, len(data.Habits))
		inputs := make([]huh.Field, len(data.Habits))
		for i, h := range data.Habits {
			names[i] = h.HabitName
			inputs[i] = huh.NewInput().
				Title(fmt.Sprintf("Habit %d", h.HabitNumber)).
				Value(&names[i])
		}

		form := huh.NewForm(huh.NewGroup(inputs...))
		if err := form.Run(); err != nil {
			return err
		}

		for i, h := range data.Habits {
			name := strings.TrimSpace(names[i])
			if name == "" {
				name = field.DefaultLabel(h.HabitNumber)
			}
			if name == h.HabitName {
				continue
			}
			if err := st.UpdateHabitName(ctx, year, month, h.HabitNumber, name); err != nil {
				return fmt.Errorf("failed to rename habit %d: %w", h.HabitNumber, err)
			}
			fmt.Printf("Habit %d renamed to %q\n", h.HabitNumber, name)
		}
		return nil
	},
}

func init() {
	habitsCmd.Flags().Int("year", 0, "Year to edit (default: current)")
	habitsCmd.Flags().Int("month", 0, "Month to edit, 1-12 (default: current)")

	rootCmd.AddCommand(habitsCmd)
}
