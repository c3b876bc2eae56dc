package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/daytrade-predictor/internal/config"
	"github.com/yourusername/daytrade-predictor/internal/database"
	"github.com/yourusername/daytrade-predictor/internal/datasource"
	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/ml"
	"github.com/yourusername/daytrade-predictor/internal/repository"
	"github.com/yourusername/daytrade-predictor/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.AddCommand(backtestCmd, featuresCmd, serveCmd)
}

var rootCmd = &cobra.Command{
	Use:          "daytrade",
	Short:        "Backtest day-trade direction models on daily price history",
	Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	secretsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := config.LoadSecretsFromAWS(secretsCtx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	return config.Validate(cfg)
}

// dependencies are the long-lived components shared by every command
type dependencies struct {
	source   *datasource.CSVSource
	registry *ml.Registry
	client   *ml.HTTPClient
	db       *database.DB
	repos    *repository.Repositories
}

func setupDependencies(ctx context.Context) (*dependencies, error) {
	deps := &dependencies{
		source: datasource.NewCSVSource(cfg.Data.DataDir, appLog),
	}

	client, err := ml.NewHTTPClient(ml.ClientConfigFrom(cfg.ModelService), appLog)
	switch {
	case errors.Is(err, ml.ErrNoModelService):
		appLog.Warn("No model service URL configured; backtests will fail until one is set")
	case err != nil:
		return nil, fmt.Errorf("failed to create model client: %w", err)
	default:
		deps.client = client
	}
	store := ml.NewMetadataStore(cfg.Data.ModelsDir, cfg.MetadataCacheTTL(), appLog)
	deps.registry = ml.NewRegistry(store, deps.client)

	if cfg.Database.Enabled {
		deps.db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.repos, err = repository.NewRepositories(deps.db)
		if err != nil {
			deps.db.Close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
	}
	return deps, nil
}

func (d *dependencies) backtestService() *service.BacktestService {
	var store service.ResultStore
	if d.repos != nil {
		store = d.repos.BacktestResult
	}
	return service.NewBacktestService(d.source, d.registry, store, service.BacktestOptions{
		MinRows:           cfg.Data.MinRows,
		RecentTradesLimit: cfg.Backtest.RecentTradesLimit,
		DefaultCapital:    cfg.Backtest.InitialCapital,
	}, appLog)
}

func (d *dependencies) Close() {
	if d.client != nil {
		_ = d.client.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
