package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/utakatalp/assistant-manager-sim/internal/config"
	"github.com/utakatalp/assistant-manager-sim/internal/csvio"
	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
	"github.com/utakatalp/assistant-manager-sim/internal/fpl"
	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
	"github.com/utakatalp/assistant-manager-sim/internal/simulation"
	"github.com/utakatalp/assistant-manager-sim/internal/store"
)

func main() {
	flags := pflag.NewFlagSet("simulate", pflag.ExitOnError)
	flags.Int("horizon", 12, "The number of gameweeks to simulate.")
	flags.Int("num-simulations", 10000, "The number of simulations to run.")
	flags.Int("workers", 1, "The number of simulation workers.")
	flags.Uint64("seed", 0, "Base random seed; 0 draws a fresh one.")
	flags.Int("max-goals", league.MaxGoals, "Highest goal count in a goal distribution.")
	flags.String("ratings", "data/ratings.csv", "Team ratings CSV.")
	flags.String("prices", "data/manager_prices.csv", "Manager prices CSV.")
	flags.String("output", "data/am_pts.csv", "Where to write projected points.")
	flags.String("log-level", "", "Log level.")
	demo := flags.Bool("demo", false, "Forecast a synthetic season instead of calling the FPL API.")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *demo, log); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}

func run(ctx context.Context, cfg *config.Config, demo bool, log *logrus.Logger) error {
	var source forecast.Source = &forecast.FPLSource{
		API:         fpl.NewClient(cfg.FPLBaseURL, cfg.FPLTimeout, log),
		RatingsPath: cfg.RatingsPath,
	}
	if demo {
		ratings, err := readRatings(cfg.RatingsPath)
		if err != nil {
			return err
		}
		source = &demoSource{ratings: ratings, maxGoals: cfg.MaxGoals, seed: cfg.Seed, out: os.Stdout}
	}

	svcCfg := forecast.ServiceConfig{
		Source:   source,
		CacheTTL: cfg.CacheTTL,
		Defaults: forecast.Params{
			Horizon:  cfg.Horizon,
			Runs:     cfg.NumSimulations,
			Workers:  cfg.Workers,
			Seed:     cfg.Seed,
			MaxGoals: cfg.MaxGoals,
		},
		Logger: log,
	}
	if cfg.DatabaseURL != "" {
		db, err := store.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		svcCfg.Repository = db
	}

	svc, err := forecast.NewService(svcCfg)
	if err != nil {
		return err
	}
	res, err := svc.Forecast(ctx, forecast.Params{})
	switch {
	case errors.Is(err, league.ErrEmptyHorizon):
		log.Warn("No fixtures left in the horizon, nothing written")
		return nil
	case errors.Is(err, fpl.ErrSeasonOver):
		log.Warn("No upcoming gameweek found, come back next season")
		return nil
	case err != nil:
		return err
	}

	printProjection(os.Stdout, res.Projection)
	return writeProjections(cfg.PricesPath, cfg.OutputPath, res.Projection, log)
}

func readRatings(path string) (league.Ratings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ratings: %w", err)
	}
	defer f.Close()
	return csvio.ReadRatings(f)
}

func writeProjections(pricesPath, outputPath string, p *simulation.Projection, log *logrus.Logger) error {
	in, err := os.Open(pricesPath)
	if err != nil {
		return fmt.Errorf("opening prices: %w", err)
	}
	defer in.Close()
	prices, err := csvio.ReadPrices(in)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := csvio.WriteProjections(out, prices, p); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	log.WithField("path", outputPath).Info("Wrote projected points")
	return nil
}

func printProjection(w io.Writer, p *simulation.Projection) {
	rows := p.Rows()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Team\t")
	for _, gw := range p.Gameweeks {
		fmt.Fprintf(tw, "GW%d\t", gw)
	}
	fmt.Fprintln(tw, "Total\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t", r.Team)
		for _, v := range r.Points {
			fmt.Fprintf(tw, "%.2f\t", v)
		}
		fmt.Fprintf(tw, "%.2f\t\n", r.Total)
	}
	tw.Flush()
}
