package main

import (
	"context"
	"log"
	"time"

	"driftbacktest/cmd"
	"driftbacktest/internal"
	"driftbacktest/internal/app"
	"driftbacktest/internal/calculator"
	"driftbacktest/internal/logger"

	"github.com/spf13/cobra"
)

var (
	dbPath string

	scheduleFile     string
	initialCapital   float64
	outDir           string
	refreshPrices    bool
	skipDelistScreen bool

	ingestSymbols []string
	ingestStart   string
	ingestEnd     string

	apiPort int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftbacktest",
		Short: "simulate annually rebalanced buy-and-hold portfolios",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "driftbacktest.db", "path to the SQLite price cache")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run a simulation from a schedule CSV and export results",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVar(&scheduleFile, "schedule", "", "schedule CSV with ticker,date,weight columns")
	simulateCmd.Flags().Float64Var(&initialCapital, "capital", 100000, "initial capital")
	simulateCmd.Flags().StringVar(&outDir, "out", "results", "directory to export results into")
	simulateCmd.Flags().BoolVar(&refreshPrices, "refresh-prices", true, "fetch schedule prices from Yahoo before simulating")
	simulateCmd.Flags().BoolVar(&skipDelistScreen, "skip-delisted-check", false, "skip the delisted ticker screen")
	simulateCmd.MarkFlagRequired("schedule")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "fetch daily closes from Yahoo into the price cache",
		RunE:  runIngest,
	}
	ingestCmd.Flags().StringSliceVar(&ingestSymbols, "symbols", nil, "symbols to ingest")
	ingestCmd.Flags().StringVar(&ingestStart, "start", "", "start date (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestEnd, "end", "", "end date (YYYY-MM-DD)")
	ingestCmd.MarkFlagRequired("symbols")
	ingestCmd.MarkFlagRequired("start")
	ingestCmd.MarkFlagRequired("end")

	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "serve the simulation over http",
		RunE:  runApi,
	}
	apiCmd.Flags().IntVar(&apiPort, "port", 3009, "port to listen on")

	rootCmd.AddCommand(simulateCmd, ingestCmd, apiCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newContext() context.Context {
	return logger.AddToContext(context.Background(), logger.New())
}

func runSimulate(c *cobra.Command, args []string) error {
	ctx := newContext()
	handler, err := cmd.InitializeDependencies(dbPath)
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	schedule, err := internal.LoadSchedule(ctx, scheduleFile)
	if err != nil {
		return err
	}

	if refreshPrices {
		if err := internal.IngestSchedulePrices(ctx, schedule, handler.PriceRepository); err != nil {
			return err
		}
	}
	if !skipDelistScreen {
		schedule = internal.RemoveDelistedTickers(ctx, schedule, handler.PriceRepository)
	}

	result, err := handler.SimulationHandler.Simulate(ctx, app.SimulationInput{
		Schedule:       schedule,
		InitialCapital: initialCapital,
	})
	if err != nil {
		return err
	}

	summary, err := calculator.CalculateMetrics(result.History)
	if err != nil {
		return err
	}

	written, err := internal.ExportResults(ctx, outDir, result, summary)
	if err != nil {
		return err
	}

	internal.Pprint(summary)
	for _, path := range written {
		logger.FromContext(ctx).Infow("wrote", "path", path)
	}
	return nil
}

func runIngest(c *cobra.Command, args []string) error {
	ctx := newContext()
	handler, err := cmd.InitializeDependencies(dbPath)
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	start, err := time.Parse(time.DateOnly, ingestStart)
	if err != nil {
		return err
	}
	end, err := time.Parse(time.DateOnly, ingestEnd)
	if err != nil {
		return err
	}

	for _, symbol := range ingestSymbols {
		if err := internal.IngestPrices(ctx, symbol, start, end, handler.PriceRepository); err != nil {
			return err
		}
	}
	return nil
}

func runApi(c *cobra.Command, args []string) error {
	handler, err := cmd.InitializeDependencies(dbPath)
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	return handler.StartApi(apiPort)
}
