package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kshaw/monthgrid/internal/config"
	"github.com/kshaw/monthgrid/internal/store"
	"github.com/kshaw/monthgrid/internal/ui"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Print one month of the grid",
	Long: `Print a month of habits, one-liners, and the best-day selection
as a terminal grid. Defaults to the current month.

Example usage:
  monthgrid month
  monthgrid month --year 2026 --month 3`,
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

		fmt.Print(ui.RenderMonth(data))
		return nil
	},
}

func init() {
	monthCmd.Flags().Int("year", 0, "Year to show (default: current)")
	monthCmd.Flags().Int("month", 0, "Month to show, 1-12 (default: current)")

	rootCmd.AddCommand(monthCmd)
}
