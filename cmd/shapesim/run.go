package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/sim"
	"github.com/san-kum/shapesim/internal/storage"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())

	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := newExperiment(ctx, cfg)
	if err != nil {
		return err
	}
	exp.Setup(experiment.NewRegistry().DefaultMetrics())

	logger.Info(ctx, "run started",
		"scene", name,
		"bodies", exp.Scene().Len(),
		"frames", cfg.Scene.Frames,
		"substeps", cfg.Scene.Substeps,
		"integrator", cfg.Integrator,
		"mode", cfg.Material.Mode,
	)

	result, err := exp.GetSimulator().Run(ctx, sim.Config{
		Frames:        cfg.Scene.Frames,
		Stride:        stride,
		ValidateState: true,
	})
	if result == nil {
		return logging.WrapError(err, "simulation")
	}
	if err != nil {
		logger.Warn(ctx, "run stopped early", "error", err, "frames_run", result.FramesRun)
	}

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return logging.WrapError(err, "save run")
	}
	logger.Info(ctx, "run finished",
		"id", runID,
		"frames_run", result.FramesRun,
		"sim_time", result.FinalTime,
		"wall_time", result.WallClocks,
	)

	fmt.Printf("run saved: %s\n", runID)
	fmt.Printf("frames: %d/%d  time: %.3f  wall: %.2fs\n",
		result.FramesRun, cfg.Scene.Frames, result.FinalTime, result.WallClocks)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %-14s %.6f\n", k, m[k])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tDURATION\tMODE\tINTEG\tBODIES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.3f\t%s\t%s\t%d\n",
			r.ID,
			r.Name,
			r.Timestamp.Format(time.DateTime),
			r.FramesRun, r.Frames,
			r.Duration,
			r.Mode,
			r.Integrator,
			len(r.Bodies),
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tMODE\tMESHES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		meshes := make([]string, len(cfg.Bodies))
		for i, b := range cfg.Bodies {
			meshes[i] = b.Mesh
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, len(cfg.Bodies), cfg.Material.Mode, strings.Join(meshes, ","))
	}
	return w.Flush()
}
