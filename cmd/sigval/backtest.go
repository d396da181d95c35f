package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/logger"
	"github.com/quantrun/sigval/internal/marketdata"
	"github.com/quantrun/sigval/internal/report"
)

var (
	backtestDB          string
	backtestFrom        string
	backtestTo          string
	backtestCapital     float64
	backtestBenchmark   string
	backtestCostBps     float64
	backtestSlippageBps float64
	backtestShowTrades  bool
	backtestArchiveFlag bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [signals-file]",
	Short: "Replay a signal file against historical data",
	Long: `Replay a JSON signal file against the market data database and print
a performance report.`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestDB, "db", "", "market data database (overrides config)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "end date YYYY-MM-DD (required)")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "initial capital (overrides config)")
	backtestCmd.Flags().StringVar(&backtestBenchmark, "benchmark", "", "benchmark asset (overrides config)")
	backtestCmd.Flags().Float64Var(&backtestCostBps, "cost-bps", -1, "transaction cost in basis points (overrides config)")
	backtestCmd.Flags().Float64Var(&backtestSlippageBps, "slippage-bps", -1, "slippage in basis points (overrides config)")
	backtestCmd.Flags().BoolVar(&backtestShowTrades, "trades", false, "print per-trade details")
	backtestCmd.Flags().BoolVar(&backtestArchiveFlag, "archive", false, "archive the report per config")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

// backtestOptions builds the run configuration from config defaults plus
// flag overrides.
func backtestOptions(defaults backtest.Config) (backtest.Config, error) {
	cfg := defaults

	from, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return cfg, fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	to, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return cfg, fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
	}
	cfg.Start = from
	cfg.End = to

	if backtestCapital > 0 {
		cfg.InitialCapital = backtestCapital
	}
	if backtestBenchmark != "" {
		cfg.BenchmarkAsset = backtestBenchmark
	}
	if backtestCostBps >= 0 {
		cfg.TransactionCostBps = backtestCostBps
	}
	if backtestSlippageBps >= 0 {
		cfg.SlippageBps = backtestSlippageBps
	}

	return cfg, cfg.Validate()
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()
	ctx := cmd.Context()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	runCfg, err := backtestOptions(backtest.Config{
		InitialCapital:     cfg.Backtest.InitialCapital,
		BenchmarkAsset:     cfg.Backtest.BenchmarkAsset,
		RebalanceFrequency: cfg.Backtest.RebalanceFrequency,
		TransactionCostBps: cfg.Backtest.TransactionCostBps,
		SlippageBps:        cfg.Backtest.SlippageBps,
	})
	if err != nil {
		return err
	}

	dsn := cfg.Storage.MarketDataDSN
	if backtestDB != "" {
		dsn = backtestDB
	}
	store, err := loadStore(ctx, dsn, log)
	if err != nil {
		return err
	}

	events, err := marketdata.LoadSignalEvents(args[0])
	if err != nil {
		return fmt.Errorf("loading signals from %s: %w", args[0], err)
	}

	backtester := backtest.New(store, logger.Component(log, "backtest"))
	result, err := backtester.Run(ctx, runCfg, events)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	attr := backtester.Attribute(result.Trades)
	tables, err := buildTables(cfg)
	if err != nil {
		return err
	}

	fmt.Print(report.Render(result, &attr, tables))
	if backtestShowTrades {
		fmt.Println()
		fmt.Print(report.RenderTrades(result.Trades))
	}

	if backtestArchiveFlag {
		archiver, err := buildArchiver(cfg, logger.Component(log, "archive"))
		if err != nil {
			return err
		}
		if archiver == nil {
			log.Warn("archiving requested but disabled in config")
			return nil
		}
		path, err := archiver.Save(ctx, result, &attr, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("archiving report: %w", err)
		}
		fmt.Printf("\nReport archived to %s\n", path)
	}

	return nil
}
