package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kshaw/monthgrid/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "monthgrid",
	Short: "Personal habit tracker with an optimistic sync engine",
	Long: `monthgrid tracks daily habits, one-liner notes, and journals on a
month grid. Field edits are saved optimistically in the background and
rolled back when the server rejects them.

Run 'monthgrid serve' to start the API server, 'monthgrid month' to view
a month, and 'monthgrid push' to save individual fields from the shell.`,
	SilenceUsage: true,
}

// newLogger builds the command logger. When a log file is configured the
// logger writes to both stderr and a rotating file.
func newLogger(prefix string, cfg *config.Config) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}
