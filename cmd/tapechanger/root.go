package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/revpol/tapechanger/internal/config"
	"github.com/revpol/tapechanger/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgPath   string
	logLevel  string
	logFormat string
	quiet     bool
	globalCfg *config.Settings
	logger    *slog.Logger

	// Global components
	globalStore *store.Store
)

// openHistoryStore opens the operation-history store when a db_path is
// configured. History is best-effort: a store failure is logged and the
// command still runs.
func openHistoryStore() {
	if globalCfg == nil || globalCfg.DBPath == "" {
		return
	}
	st, err := store.New(globalCfg.DBPath, logger)
	if err != nil {
		logger.Warn("failed to open operation history store", "path", globalCfg.DBPath, "error", err)
		return
	}
	globalStore = st
}

// closeHistoryStore closes the operation-history store
func closeHistoryStore() {
	if globalStore != nil {
		if err := globalStore.Close(); err != nil {
			logger.Error("failed to close operation history store", "error", err)
		}
	}
}

// shouldSkipConfig checks if a command should skip config loading
func shouldSkipConfig(cmdName string) bool {
	skipConfigCmds := map[string]bool{
		"help":       true,
		"version":    true,
		"completion": true,
	}
	return skipConfigCmds[cmdName]
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tapechanger",
		Short: "Autochanger control command for a backup storage daemon",
		Long: `tapechanger drives a robotic tape library on behalf of a backup
storage daemon. It wraps the mtx, mt, tapeinfo, and lsscsi utilities,
interprets their status output, and can automatically clean a drive that
reports it needs cleaning after an unload.

The storage daemon invokes one command per process, passing the changer
device, slot, drive device, and drive index as positional arguments.
Slots are numbered from 1; drives are numbered from 0.`,
		Example: `  tapechanger listall /dev/sg2
  tapechanger load /dev/sg2 5 /dev/nst0 0
  tapechanger unload /dev/sg2 5 /dev/nst0 0 1234 NightlyBackup
  tapechanger transfer /dev/sg2 3 7
  tapechanger history --limit 20`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logging
			setupLogging()

			if shouldSkipConfig(cmd.Name()) {
				return nil
			}

			// Load config
			if cfgPath == "" {
				var err error
				cfgPath, err = config.FindConfigFile()
				if err != nil {
					logger.Debug("config file not found, using defaults", "error", err)
				}
			}

			if cfgPath != "" {
				var err error
				globalCfg, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			} else {
				globalCfg = config.DefaultSettings()
			}

			if !quiet {
				logger.Debug("config loaded", "path", cfgPath, "changer_name", globalCfg.ChangerName)
			}

			openHistoryStore()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeHistoryStore()
		},
	}

	// Add persistent flags
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	// Add subcommands
	cmd.AddCommand(
		newListCmd(),
		newListAllCmd(),
		newLoadedCmd(),
		newSlotsCmd(),
		newLoadCmd(),
		newUnloadCmd(),
		newTransferCmd(),
		newHistoryCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if quiet {
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}
