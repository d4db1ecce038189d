package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/internal/logger"
	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Paper-trading portfolio ledger",
	Long: `Ledger keeps simulated trading portfolios: cash, open positions at
weighted-average cost, an append-only transaction log and mark-to-market
valuations from prices you supply.

Examples:
  ledger portfolio create --owner alice
  ledger trade buy <portfolio-id> GOLD 10 1900.50
  ledger revalue <portfolio-id> GOLD=1925
  ledger history <portfolio-id> --period 30d`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database (overrides store.db_path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
}

// loadConfig reads --config, or the defaults, and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("db") {
		cfg.Store.Type = "sqlite"
		cfg.Store.DBPath = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	return cfg, cfg.Validate()
}

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *ledger.Engine
}

// withEngine wires config, logger, repository and journal, runs fn and
// releases everything afterwards.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})

	var repo ledger.Repository
	switch cfg.Store.Type {
	case "sqlite":
		s, err := store.New(cfg.Store.DBPath, log)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer s.Close()
		repo = s
	default:
		repo = ledger.NewMemoryRepository()
	}

	var sinks journal.Multi
	if cfg.Journal.Type == "csv" {
		c, err := journal.NewCSV(cfg.Journal.TransactionsFile, cfg.Journal.ValuationsFile)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		sinks = append(sinks, c)
	}
	if cfg.Journal.OrgFile != "" {
		o, err := journal.NewOrgFile(cfg.Journal.OrgFile)
		if err != nil {
			_ = sinks.Close()
			return fmt.Errorf("open org journal: %w", err)
		}
		sinks = append(sinks, o)
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warn().Err(err).Msg("close journal")
		}
	}()

	e := ledger.NewEngine(repo,
		ledger.WithFeeStrategy(cfg.FeeStrategy()),
		ledger.WithJournal(sinks),
		ledger.WithLogger(log),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, &app{cfg: cfg, log: log, engine: e})
}
