package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/config"
	"github.com/sadopc/tabtrackr/internal/store"
)

var (
	configPath string
	dbPath     string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "tabtrackr",
	Short: "tabtrackr – browsing activity and productivity tracker",
	Long: `tabtrackr records the pages you visit and the time spent on each site,
classifies them as Work, Learning or Other, and shows daily and weekly
summaries, goal progress and a small task list.

Run "tabtrackr daemon" to receive browser events, and "tabtrackr" to open
the popup.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runPopup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "ingest address for the daemon")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(popupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(checkTasksCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig layers .env files, the YAML file, TABTRACKR_* variables and
// the persistent flags, in that order.
func loadConfig() (*config.Config, error) {
	envFiles := []string{".env"}
	if dir, err := config.Dir(); err == nil {
		envFiles = append(envFiles, filepath.Join(dir, ".env"))
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openService opens the configured database. The caller closes the store.
func openService(cfg *config.Config) (*activity.Service, *store.Store, error) {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc := activity.New(s, activity.Options{
		Classifier: cfg.BuildClassifier(),
		KeepLedger: cfg.KeepLedger(),
	})
	return svc, s, nil
}

// withService loads the config and runs fn against an open service.
func withService(fn func(cfg *config.Config, svc *activity.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, s, err := openService(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cfg, svc)
}
