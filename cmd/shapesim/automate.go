package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/automation"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/storage"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	jitter     float64
)

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), logger)
	for _, r := range results {
		id, serr := st.Save(r.Name, r.Config, r.Result)
		if serr != nil {
			return serr
		}
		fmt.Printf("%-12s %s  frames %d\n", r.Name, id, r.Result.FramesRun)
	}
	return err
}

// baseConfig snapshots the flag-resolved config so every sweep point
// starts from the same values.
func baseConfig(cmd *cobra.Command) (func() *config.Config, error) {
	if _, _, err := loadConfig(cmd); err != nil {
		return nil, err
	}
	return func() *config.Config {
		cfg, _, _ := loadConfig(cmd)
		return cfg
	}, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())
	base, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(ctx, &automation.Sweep{
		Base:  base,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTABLE\tFRAMES\tENERGY\tSHAPE_ERR\tCONTACTS\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%t\t%d\t%.6f\t%.6f\t%.3f\n",
			r.Value, r.Stable, r.FramesRun,
			r.Metrics["energy"], r.Metrics["shape_error"], r.Metrics["contact_ratio"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())
	base, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarlo{
		Base:   base,
		Jitter: jitter,
		Trials: trials,
		Seed:   seed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%d trials: %d stable, %d unstable\n", len(results), stable, unstable)
	for _, r := range results {
		if !r.Stable {
			fmt.Printf("  trial %d (seed %d) diverged\n", r.Trial, r.Seed)
		}
	}
	return nil
}
