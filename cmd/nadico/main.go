package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nadico/internal/config"
	"nadico/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	dbPath     string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nadico",
	Short: "nadico - derive nADICO norms from valenced observations",
	Long: `nadico generalizes observed, valenced actions into institutional
statements of the form "attributes deontic aim conditions, or else
consequence".

Observations are read from yaml files listing agents and the action chains
each of them observed. Derived norms can be printed, stored in SQLite and
exported as Mangle facts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Store.DatabasePath = dbPath
		}
		if verbose {
			cfg.Logging.Level = "debug"
			cfg.Logging.DebugMode = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		// Initialize logger
		zc := zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.Sampling = nil
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfg.Logging.DebugMode {
			if err := logging.Configure(cfg.Logging.Options()); err != nil {
				return err
			}
		} else {
			logging.SetBase(logger, nil)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "nadico.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides store.database_path)")

	rootCmd.AddCommand(
		deriveCmd,
		generalizeCmd,
		queryCmd,
		exportCmd,
		normsCmd,
		watchCmd,
		importCmd,
		runsCmd,
		showCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
