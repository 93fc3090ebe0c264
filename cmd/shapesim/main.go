package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	frames     int
	timestep   float64
	substeps   int
	seed       int64
	integrator string
	mode       string
	stiffness  float64
	blend      float64
	damping    float64
	stride     int
	body       int
	outPath    string
	snapDir    string
	runs       int
	gridSteps  int
	metricName string

	logger = logging.NewLogger()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shapesim",
		Short: "meshless shape-matching soft body simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(config.ListPresets(), buildPresetScene)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".shapesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body heights and energies of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, or a height trace as SVG with --out",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "write the height trace of --body as SVG")
	exportCmd.Flags().IntVar(&body, "body", 0, "body index")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the full run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "settling, bounces and wobble frequency of each body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time frames and run a seeded ensemble",
		Args:  cobra.NoArgs,
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 4, "ensemble size")

	meshCmd := &cobra.Command{
		Use:   "mesh [name|file.obj]",
		Short: "describe a mesh",
		Args:  cobra.ExactArgs(1),
		RunE:  describeMesh,
	}
	meshCmd.Flags().StringVar(&outPath, "out", "", "write the mesh as OBJ")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search alpha, beta and delta",
		Args:  cobra.NoArgs,
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&gridSteps, "steps", 3, "grid points per parameter")
	tuneCmd.Flags().StringVar(&metricName, "metric", "shape_error", "metric to minimize")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run a scene and write every body as OBJ plus an SVG frame",
		Args:  cobra.NoArgs,
		RunE:  snapshotScene,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapDir, "out", "snapshot", "output directory")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted list of scenes and store each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and compare the runs",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "stiffness", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a scene with jittered rest shapes",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 10, "number of trials")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 0.02, "rest shape jitter")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, analyzeCmd, liveCmd, presetsCmd, benchCmd, meshCmd, tuneCmd, snapshotCmd, scenarioCmd, sweepCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), "command failed", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, ini or gcfg)")
	cmd.Flags().StringVar(&preset, "preset", "drop", "preset scene")
	cmd.Flags().IntVar(&frames, "frames", d.Scene.Frames, "frames to run")
	cmd.Flags().Float64Var(&timestep, "dt", d.Scene.Timestep, "timestep h")
	cmd.Flags().IntVar(&substeps, "substeps", d.Scene.Substeps, "passes per frame")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "placement seed")
	cmd.Flags().StringVar(&integrator, "integrator", d.Integrator, "modified-euler or explicit-euler")
	cmd.Flags().StringVar(&mode, "mode", d.Material.Mode, "shape_matching, rigid, linear or quadratic")
	cmd.Flags().Float64Var(&stiffness, "alpha", d.Material.Stiffness, "stiffness")
	cmd.Flags().Float64Var(&blend, "beta", d.Material.LinearBlend, "linear blend")
	cmd.Flags().Float64Var(&damping, "delta", d.Material.VelocityDamping, "velocity damping")
}

// loadConfig starts from --config or --preset and applies only the flags
// the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		name string
	)
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = c, "config"
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	f := cmd.Flags()
	if f.Changed("frames") {
		cfg.Scene.Frames = frames
	}
	if f.Changed("dt") {
		cfg.Scene.Timestep = timestep
	}
	if f.Changed("substeps") {
		cfg.Scene.Substeps = substeps
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("mode") {
		cfg.Material.Mode = mode
		for i := range cfg.Bodies {
			cfg.Bodies[i].Mode = ""
		}
	}
	if f.Changed("alpha") {
		cfg.Material.Stiffness = stiffness
	}
	if f.Changed("beta") {
		cfg.Material.LinearBlend = blend
	}
	if f.Changed("delta") {
		cfg.Material.VelocityDamping = damping
	}
	return cfg, name, nil
}

// newExperiment builds the experiment and logs every clamped value.
func newExperiment(ctx context.Context, cfg *config.Config) (*experiment.Experiment, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, logging.WrapError(err, "build scene")
	}
	for _, note := range exp.Notes() {
		logger.Warn(ctx, "config value clamped", "detail", note)
	}
	return exp, nil
}

func buildPresetScene(name string) (*scene.Scene, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	cfg.Normalize()
	return experiment.BuildScene(cfg)
}
