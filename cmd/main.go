// Command cryptoadvisor serves cryptocurrency prices and LLM investment recommendations.
//
// Usage:
//
//	cryptoadvisor serve --config config.yaml
//	cryptoadvisor prices
//	cryptoadvisor recommend BTC
//	cryptoadvisor history ETH --days 3
//
// Environment variables override the config file:
//
//	MONGO_URL, DB_NAME, COINMARKETCAP_API_KEY, OPENAI_API_KEY, LLM_API_URL, LLM_MODEL,
//	CORS_ORIGINS, PRICE_SOURCE, STORAGE_DRIVER, HTTP_ADDR, ANALYSIS_SCHEDULE,
//	ANALYSIS_WORKERS, LOG_LEVEL, LOG_FILE
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vadiminshakov/cryptoadvisor/config"
	"github.com/vadiminshakov/cryptoadvisor/internal/app"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/internal/logging"
	"github.com/vadiminshakov/cryptoadvisor/internal/services"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	configPath string
	cfg        config.Config
	l          *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:          "cryptoadvisor",
		Short:        "Crypto prices and AI investment recommendations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.l != nil {
				_ = e.l.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "path to yaml config")

	root.AddCommand(newServeCmd(e), newPricesCmd(e), newRecommendCmd(e), newHistoryCmd(e))

	return root
}

func (e *env) init() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.FilePath = cfg.LogFile
	l, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.l = l
	return nil
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the analysis scheduler when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, e.cfg, e.l)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.Background()); err != nil {
					e.l.Error("failed to close storage", zap.Error(err))
				}
			}()

			return a.Run(ctx)
		},
	}
}

func newPricesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Print current prices of all supported symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.NewPricer(e.cfg).GetPrices(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
}

func newRecommendCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend SYMBOL",
		Short: "Generate, store and print a recommendation for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), e.cfg, e.l)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			rec, err := a.Service.Recommend(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newHistoryCmd(e *env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Print a synthetic hourly price history for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > services.MaxHistoryDays {
				return fmt.Errorf("--days must be between 1 and %d", services.MaxHistoryDays)
			}

			symbol := domain.NormalizeSymbol(args[0])
			if !domain.IsSupportedSymbol(symbol) {
				return errors.Wrapf(domain.ErrUnsupportedSymbol, "symbol %s", symbol)
			}

			gen := app.NewHistoryGenerator(e.l, app.NewPricer(e.cfg))
			return printJSON(cmd.OutOrStdout(), gen.Generate(cmd.Context(), symbol, days))
		},
	}
	cmd.Flags().IntVar(&days, "days", services.DefaultHistoryDays, "lookback window in days")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
