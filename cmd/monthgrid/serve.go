package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/kshaw/monthgrid/internal/config"
	"github.com/kshaw/monthgrid/internal/server"
	"github.com/kshaw/monthgrid/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the month grid API and WebSocket server",
	Long: `Start the HTTP server that persists field saves and broadcasts
field_saved events to connected WebSocket clients.

Endpoints:
  POST /api/save-oneliner      Save a daily one-liner
  POST /api/save-habit         Save a habit checkmark
  POST /api/update-habit-name  Rename a habit column
  POST /api/save-best-day      Save the best-day selection
  POST /api/save-journal       Save a daily journal (returns word count)
  GET  /api/month              Read a full month
  GET  /health                 Health check
  WS   /ws                     Live field_saved and reload events

Example usage:
  monthgrid serve                  # Listen on the configured address
  monthgrid serve --addr :9000     # Listen on a custom address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		logger := newLogger("[serve] ", cfg)

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer st.Close()

		if err := st.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		srv := server.NewServer(st, &server.Config{
			Addr:   cfg.Addr,
			Logger: logger,
		})
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		if cfg.AssetsDir != "" {
			if _, err := srv.WatchAssets(cfg.AssetsDir); err != nil {
				logger.Printf("Asset watcher disabled: %v", err)
			}
		}

		// Hourly maintenance: seed the current month ahead of the first
		// request and checkpoint the WAL.
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		_, err = sched.NewJob(
			gocron.DurationJob(time.Hour),
			gocron.NewTask(func() {
				now := time.Now()
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if _, err := st.GetOrCreateMonth(ctx, now.Year(), int(now.Month())); err != nil {
					logger.Printf("Month maintenance failed: %v", err)
				}
				if err := st.Checkpoint(); err != nil {
					logger.Printf("Checkpoint failed: %v", err)
				}
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule maintenance: %w", err)
		}
		sched.Start()

		fmt.Printf("Server started on %s\n", srv.GetAddr())
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", srv.GetAddr())
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down...")
		if err := sched.Shutdown(); err != nil {
			logger.Printf("Scheduler shutdown error: %v", err)
		}
		if err := srv.Stop(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}

		fmt.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
