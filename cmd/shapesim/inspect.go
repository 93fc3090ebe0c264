package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/shapesim/internal/analysis"
	"github.com/san-kum/shapesim/internal/export"
	"github.com/san-kum/shapesim/internal/sim"
	"github.com/san-kum/shapesim/internal/storage"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red, asciigraph.Blue,
}

// loadResult rebuilds the recorded part of a stored run.
func loadResult(st *storage.Store, runID string) (*storage.RunMetadata, *sim.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trajectory: %w", err)
	}
	return meta, &sim.Result{
		Names:     meta.Bodies,
		Snapshots: snaps,
		Metrics:   meta.Metrics,
		FramesRun: meta.FramesRun,
		FinalTime: meta.Duration,
	}, nil
}

func centerY(b sim.BodyState) float64 { return b.Center[1] }
func radius(b sim.BodyState) float64  { return b.Radius }
func bottom(b sim.BodyState) float64  { return b.Center[1] - b.Radius }

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	if len(result.Snapshots) < 2 {
		return fmt.Errorf("run %s has too few snapshots to plot", meta.ID)
	}

	heights := make([][]float64, len(meta.Bodies))
	colors := make([]asciigraph.AnsiColor, len(meta.Bodies))
	for i := range meta.Bodies {
		heights[i] = result.Series(i, centerY)
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	fmt.Println(asciigraph.PlotMany(heights,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(meta.Bodies...),
		asciigraph.Caption(fmt.Sprintf("%s: centre height", meta.ID)),
	))
	fmt.Println()

	energy := make([]float64, len(result.Snapshots))
	for i, s := range result.Snapshots {
		energy[i] = s.Energy()
	}
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.Caption("kinetic energy"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	if body < 0 || body >= len(meta.Bodies) {
		return fmt.Errorf("body %d out of range [0, %d)", body, len(meta.Bodies))
	}
	svg, err := export.TrajectoryToSVG(result.Times(), result.Series(body, centerY), 800, 400, "#00ffcc")
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.Write(f, svg); err != nil {
		return err
	}
	fmt.Printf("height trace of %s written to %s\n", meta.Bodies[body], outPath)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, storage.NewExportData(meta.Name, cfg, result))
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}
	times := result.Times()
	if len(times) < 2 {
		return fmt.Errorf("run %s has too few snapshots to analyze", meta.ID)
	}
	// Snapshots may be strided, so the sample spacing comes from the record.
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	floor := -cfg.Scene.WallDist

	fmt.Printf("run: %s  (%d snapshots, %.3f s)\n\n", meta.ID, len(times), meta.Duration)
	for i, name := range meta.Bodies {
		speed := result.Series(i, func(b sim.BodyState) float64 { return b.AverageVelocity.Len() })
		energy := result.Series(i, func(b sim.BodyState) float64 { return b.Energy })
		e := analysis.Describe(energy)
		r := analysis.Describe(result.Series(i, radius))

		fmt.Printf("%s\n", name)
		fmt.Printf("  energy   mean %.6f  max %.6f  final %.6f\n", e.Mean, e.Max, e.Final)
		fmt.Printf("  radius   mean %.4f  std %.4f  [%.4f, %.4f]\n", r.Mean, r.StdDev, r.Min, r.Max)
		if t, ok := analysis.SettleTime(times, speed, 0.01); ok {
			fmt.Printf("  settled  %.3f s\n", t)
		} else {
			fmt.Printf("  settled  never\n")
		}
		fmt.Printf("  bounces  %d\n", analysis.Bounces(result.Series(i, bottom), floor, 0.02))
		if f, err := analysis.DominantFrequency(result.Series(i, radius), dt); err == nil {
			fmt.Printf("  wobble   %.3f Hz\n", f)
		}
		fmt.Println()
	}

	if spectrum, err := analysis.PowerSpectrum(result.Series(0, radius)); err == nil && len(spectrum) > 1 {
		fmt.Println(asciigraph.Plot(spectrum[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: radius power spectrum", meta.Bodies[0])),
		))
	}
	return nil
}
