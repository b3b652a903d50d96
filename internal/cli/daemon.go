package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/config"
	"github.com/sadopc/tabtrackr/internal/ingest"
	"github.com/sadopc/tabtrackr/internal/notify"
	"github.com/sadopc/tabtrackr/internal/recorder"
	"github.com/sadopc/tabtrackr/internal/tui"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Receive browser events and record visits and active time",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

var popupCmd = &cobra.Command{
	Use:   "popup",
	Short: "Open the summary popup (default command)",
	Args:  cobra.NoArgs,
	RunE:  runPopup,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if f := setupLogging(cfg.LogFile, cmd.ErrOrStderr()); f != nil {
		defer f.Close()
	}

	svc, s, err := openService(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := notify.New(cfg.Notifier)
	if err != nil {
		return err
	}

	rec := recorder.New(svc, n, recorder.Options{
		TaskCheckInterval: cfg.TaskCheckInterval,
		PruneInterval:     cfg.PruneInterval,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srvErr := make(chan error, 1)
	go func() {
		err := ingest.NewServer(rec).ListenAndServe(ctx, cfg.Listen)
		if err != nil {
			log.Printf("ingest: %v", err)
		}
		srvErr <- err
		cancel()
	}()

	log.Printf("tabtrackr daemon started, db %s", cfg.DBPath)
	if err := rec.Run(ctx); err != nil {
		return err
	}
	if err := <-srvErr; err != nil {
		return fmt.Errorf("ingest on %s: %w", cfg.Listen, err)
	}
	log.Printf("tabtrackr daemon stopped")
	return nil
}

// setupLogging sends the standard logger to logFile as well as to w. When
// the file cannot be opened logging stays on w.
func setupLogging(logFile string, w io.Writer) *os.File {
	if logFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		log.Printf("Failed to create log directory: %v", err)
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return nil
	}
	log.SetOutput(io.MultiWriter(w, f))
	return f
}

func runPopup(cmd *cobra.Command, args []string) error {
	return withService(func(cfg *config.Config, svc *activity.Service) error {
		// The popup owns the terminal, so logs only go to the file.
		if cfg.LogFile != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
				if f, err := tea.LogToFile(cfg.LogFile, "popup"); err == nil {
					defer f.Close()
				}
			}
		}

		app := tui.NewApp(svc, tui.Options{RefreshInterval: cfg.RefreshInterval})
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
}
