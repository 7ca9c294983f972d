package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kshaw/monthgrid/internal/config"
	"github.com/kshaw/monthgrid/internal/field"
	"github.com/kshaw/monthgrid/internal/syncclient"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Save individual fields through the API server",
	Long: `Save one field through a running monthgrid server, the same way
the grid UI does. The target month defaults to the current one.

Example usage:
  monthgrid push note 14 "long walk at dusk"
  monthgrid push check 14 2 on
  monthgrid push label 2 "Read 20 pages"
  monthgrid push bestday 14
  monthgrid push journal 14 "Slept in, then..."`,
}

// pushTarget resolves the client and month shared by the push subcommands.
func pushTarget(cmd *cobra.Command) (*syncclient.Client, int, int, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, 0, err
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
		return nil, 0, 0, fmt.Errorf("month must be between 1 and 12 (got %d)", month)
	}

	client := syncclient.New(cfg.BaseURL, nil, newLogger("[push] ", cfg))
	return client, year, month, nil
}

func pushSend(client *syncclient.Client, kind field.Kind, payload interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := client.Send(ctx, kind.Endpoint(), payload)
	if !res.OK() {
		if res.Err != nil {
			return fmt.Errorf("save failed: %w", res.Err)
		}
		return fmt.Errorf("save rejected: %s", res.Error)
	}
	if kind == field.KindJournal {
		fmt.Printf("Saved (%d words)\n", res.WordCount)
	} else {
		fmt.Println("Saved")
	}
	return nil
}

func parseDay(arg string) (int, error) {
	day, err := strconv.Atoi(arg)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("day must be between 1 and 31 (got %q)", arg)
	}
	return day, nil
}

var pushNoteCmd = &cobra.Command{
	Use:   "note <day> <text>",
	Short: "Save a daily one-liner",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, year, month, err := pushTarget(cmd)
		if err != nil {
			return err
		}
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		return pushSend(client, field.KindOneLiner, field.OneLinerPayload{
			Year: year, Month: month, Day: day,
			Text: strings.Join(args[1:], " "),
		})
	},
}

var pushJournalCmd = &cobra.Command{
	Use:   "journal <day> <text>",
	Short: "Save a daily journal entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, year, month, err := pushTarget(cmd)
		if err != nil {
			return err
		}
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		return pushSend(client, field.KindJournal, field.JournalPayload{
			Year: year, Month: month, Day: day,
			Text: strings.Join(args[1:], " "),
		})
	},
}

var pushCheckCmd = &cobra.Command{
	Use:   "check <day> <habit> <on|off>",
	Short: "Save a habit checkmark",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, year, month, err := pushTarget(cmd)
		if err != nil {
			return err
		}
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		habit, err := strconv.Atoi(args[1])
		if err != nil || habit < 1 || habit > field.HabitCount {
			return fmt.Errorf("habit must be between 1 and %d (got %q)", field.HabitCount, args[1])
		}
		var checked bool
		switch args[2] {
		case "on":
			checked = true
		case "off":
			checked = false
		default:
			return fmt.Errorf("expected 'on' or 'off' (got %q)", args[2])
		}
		return pushSend(client, field.KindHabitCheck, field.HabitCheckPayload{
			Year: year, Month: month, Day: day,
			HabitNumber: habit, Checked: checked,
		})
	},
}

var pushLabelCmd = &cobra.Command{
	Use:   "label <habit> <name>",
	Short: "Rename a habit column",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, year, month, err := pushTarget(cmd)
		if err != nil {
			return err
		}
		habit, err := strconv.Atoi(args[0])
		if err != nil || habit < 1 || habit > field.HabitCount {
			return fmt.Errorf("habit must be between 1 and %d (got %q)", field.HabitCount, args[0])
		}
		return pushSend(client, field.KindHabitLabel, field.HabitLabelPayload{
			Year: year, Month: month,
			HabitNumber: habit,
			Name:        strings.Join(args[1:], " "),
		})
	},
}

var pushBestDayCmd = &cobra.Command{
	Use:   "bestday <day>",
	Short: "Save the best-day selection (0 clears it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, year, month, err := pushTarget(cmd)
		if err != nil {
			return err
		}
		day, err := strconv.Atoi(args[0])
		if err != nil || day < 0 || day > 31 {
			return fmt.Errorf("day must be between 0 and 31 (got %q)", args[0])
		}
		return pushSend(client, field.KindBestDay, field.BestDayPayload{
			Year: year, Month: month, BestDay: day,
		})
	},
}

func init() {
	pushCmd.PersistentFlags().Int("year", 0, "Target year (default: current)")
	pushCmd.PersistentFlags().Int("month", 0, "Target month, 1-12 (default: current)")

	pushCmd.AddCommand(pushNoteCmd)
	pushCmd.AddCommand(pushJournalCmd)
	pushCmd.AddCommand(pushCheckCmd)
	pushCmd.AddCommand(pushLabelCmd)
	pushCmd.AddCommand(pushBestDayCmd)

	rootCmd.AddCommand(pushCmd)
}
