package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/logger"
	"github.com/quantrun/sigval/internal/marketdata"
)

var (
	sweepDB          string
	sweepFrom        string
	sweepTo          string
	sweepCapital     float64
	sweepSlippageBps string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep [signals-file]",
	Short: "Run the same signal file across several slippage assumptions",
	Long: `Run one backtest per slippage value, concurrently, and print a
comparison table. Useful for checking how sensitive a signal set is to
execution quality.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDB, "db", "", "market data database (overrides config)")
	sweepCmd.Flags().StringVar(&sweepFrom, "from", "", "start date YYYY-MM-DD (required)")
	sweepCmd.Flags().StringVar(&sweepTo, "to", "", "end date YYYY-MM-DD (required)")
	sweepCmd.Flags().Float64Var(&sweepCapital, "capital", 0, "initial capital (overrides config)")
	sweepCmd.Flags().StringVar(&sweepSlippageBps, "slippage-bps", "0,5,10,25",
		"comma-separated slippage values in basis points")

	sweepCmd.MarkFlagRequired("from")
	sweepCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(sweepCmd)
}

func parseSlippageList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid slippage value %q: %w", p, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("slippage cannot be negative: %v", v)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no slippage values given")
	}
	return values, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()
	ctx := cmd.Context()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	from, err := time.Parse("2006-01-02", sweepFrom)
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	to, err := time.Parse("2006-01-02", sweepTo)
	if err != nil {
		return fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
	}

	slippages, err := parseSlippageList(sweepSlippageBps)
	if err != nil {
		return err
	}

	capital := cfg.Backtest.InitialCapital
	if sweepCapital > 0 {
		capital = sweepCapital
	}

	cfgs := make([]backtest.Config, len(slippages))
	for i, bps := range slippages {
		cfgs[i] = backtest.Config{
			Start:              from,
			End:                to,
			InitialCapital:     capital,
			TransactionCostBps: cfg.Backtest.TransactionCostBps,
			SlippageBps:        bps,
		}
		if err := cfgs[i].Validate(); err != nil {
			return err
		}
	}

	dsn := cfg.Storage.MarketDataDSN
	if sweepDB != "" {
		dsn = sweepDB
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
	results, err := backtester.Sweep(ctx, cfgs, events)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Println("=== SIGVAL Slippage Sweep ===")
	fmt.Printf("%-14s %-14s %-12s %-12s %-8s\n",
		"Slippage(bps)", "Return", "Sharpe", "MaxDD", "Trades")
	for i, result := range results {
		if result == nil {
			continue
		}
		fmt.Printf("%-14.1f %-14s %-12.2f %-12s %-8d\n",
			slippages[i],
			fmt.Sprintf("%.2f%%", result.TotalReturnPct),
			result.SharpeRatio,
			fmt.Sprintf("%.2f%%", result.MaxDrawdownPct),
			result.TotalTrades)
	}

	return nil
}
