package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/api"
	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/logger"
	"github.com/quantrun/sigval/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SIGVAL HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := loadStore(cmd.Context(), cfg.Storage.MarketDataDSN, log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	backtester := backtest.New(store, logger.Component(log, "backtest")).WithMetrics(reg)

	defaults := backtest.Config{
		InitialCapital:     cfg.Backtest.InitialCapital,
		BenchmarkAsset:     cfg.Backtest.BenchmarkAsset,
		RebalanceFrequency: cfg.Backtest.RebalanceFrequency,
		TransactionCostBps: cfg.Backtest.TransactionCostBps,
		SlippageBps:        cfg.Backtest.SlippageBps,
	}

	server := api.NewServer(api.Config{
		Host:   cfg.Server.Host,
		Port:   cfg.Server.Port,
		APIKey: cfg.Server.APIKey,
	}, backtester, defaults, logger.Component(log, "api"))

	if cfg.Metrics.Enabled {
		server.WithMetrics(reg, cfg.Metrics.Path)
	}

	archiver, err := buildArchiver(cfg, logger.Component(log, "archive"))
	if err != nil {
		return err
	}
	if archiver != nil {
		server.WithArchiver(archiver.WithMetrics(reg))
	}

	log.Info("starting SIGVAL server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down SIGVAL server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
