package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/export"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/optim"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/sim"
	"github.com/san-kum/shapesim/internal/softbody"
	"github.com/san-kum/shapesim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(ctx, cfg)
	if err != nil {
		return err
	}
	return viz.Run(exp.Scene(), name)
}

func benchScene(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(ctx, cfg)
	if err != nil {
		return err
	}

	sc := exp.Scene()
	start := time.Now()
	for i := 0; i < cfg.Scene.Frames; i++ {
		if err := sc.Frame(); err != nil {
			return logging.WrapError(err, "frame %d", i)
		}
	}
	elapsed := time.Since(start)

	vertices := 0
	for _, e := range sc.Entries() {
		vertices += e.Body.NumVertices()
	}
	perFrame := elapsed / time.Duration(cfg.Scene.Frames)
	fmt.Printf("%s: %d bodies, %d vertices, %d substeps\n", name, sc.Len(), vertices, cfg.Scene.Substeps)
	fmt.Printf("  %d frames in %v (%v/frame, %.0f fps)\n",
		cfg.Scene.Frames, elapsed, perFrame, float64(cfg.Scene.Frames)/elapsed.Seconds())

	if runs < 2 {
		return nil
	}
	registry := experiment.NewRegistry()
	factory := func(seed int64) (*scene.Scene, error) {
		c := *cfg
		c.Seed = seed
		return experiment.BuildScene(&c)
	}
	ens := sim.NewEnsemble(factory, registry.DefaultMetrics, runs, cfg.Seed)
	results, err := ens.Run(ctx, sim.Config{Frames: cfg.Scene.Frames, ValidateState: true})
	if err != nil {
		logger.Warn(ctx, "ensemble member failed", "error", err)
	}

	names := registry.ListMetrics()
	sort.Strings(names)
	fmt.Printf("\nensemble of %d seeds from %d:\n", runs, cfg.Seed)
	for _, n := range names {
		vals := make([]float64, 0, len(results))
		for _, r := range results {
			if r == nil {
				continue
			}
			if v, ok := r.Metrics[n]; ok {
				vals = append(vals, v)
			}
		}
		mean, std := stat.MeanStdDev(vals, nil)
		fmt.Printf("  %-14s %.6f ± %.6f\n", n, mean, std)
	}
	return nil
}

func describeMesh(cmd *cobra.Command, args []string) error {
	m, err := mesh.Load(args[0])
	if err != nil {
		return err
	}
	center, r := m.BoundingSphere()
	lo, hi := m.Bounds()
	fmt.Printf("%s\n", m.Name)
	fmt.Printf("  vertices      %d\n", m.NumVertices())
	fmt.Printf("  triangles     %d\n", m.NumTriangles())
	fmt.Printf("  surface area  %.6f\n", m.SurfaceArea())
	fmt.Printf("  bounds        %.3v .. %.3v\n", lo, hi)
	fmt.Printf("  sphere        %.3v r=%.4f\n", center, r)
	fmt.Printf("  total mass    %g\n", softbody.MassScale(m.NumVertices()))

	b, err := softbody.New(m.Clone(), softbody.DefaultParams())
	if err != nil {
		fmt.Printf("  body          %v\n", err)
	} else {
		fmt.Printf("  quadratic     %t\n", b.SupportsQuadratic())
	}

	if outPath != "" {
		if err := mesh.SaveOBJ(outPath, m); err != nil {
			return err
		}
		fmt.Printf("written to %s\n", outPath)
	}
	return nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), logging.NewRunID())
	if _, err := experiment.NewRegistry().GetMetric(metricName); err != nil {
		return err
	}

	params := []string{"stiffness", "linear_blend", "velocity_damping"}
	ranges := [][]float64{
		optim.Linspace(0.05, 1, gridSteps),
		optim.Linspace(0, 1, gridSteps),
		optim.Linspace(0, 0.1, gridSteps),
	}
	gs, err := optim.NewGridSearch(params, ranges)
	if err != nil {
		return err
	}

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		if err := experiment.ApplyParams(cfg, p); err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, err
		}
		m, err := experiment.NewRegistry().GetMetric(metricName)
		if err != nil {
			return nil, err
		}
		exp.Setup([]sim.Metric{m})
		return exp, nil
	}

	logger.Info(ctx, "grid search started", "metric", metricName, "points", gridSteps*gridSteps*gridSteps)
	best, value, err := gs.Search(ctx, build, metricName)
	logger.Info(ctx, "grid search finished", "evaluated", gs.Evaluated(), "failed", gs.Failed())
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6f\n", metricName, value)
	for _, p := range params {
		fmt.Printf("  %-16s %.4f\n", p, best[p])
	}
	return nil
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(ctx, cfg)
	if err != nil {
		return err
	}
	sc := exp.Scene()
	for i := 0; i < cfg.Scene.Frames; i++ {
		if err := sc.Frame(); err != nil {
			return logging.WrapError(err, "frame %d", i)
		}
	}

	if err := os.MkdirAll(snapDir, 0755); err != nil {
		return err
	}
	wire := &viz.Wireframe{}
	wire.AddBox(cfg.Scene.WallDist)
	for _, e := range sc.Entries() {
		p := filepath.Join(snapDir, e.Name+".obj")
		if err := mesh.SaveOBJ(p, e.Body.Mesh); err != nil {
			return err
		}
		wire.AddMesh(e.Body.Mesh)
		fmt.Printf("%s\n", p)
	}

	canvas := viz.NewCanvas(80, 40)
	viz.Render3D(canvas, wire, viz.NewCamera())
	p := filepath.Join(snapDir, name+".svg")
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.Write(f, export.CanvasToSVG(canvas, 4, "#00ffcc")); err != nil {
		return err
	}
	fmt.Printf("%s\n", p)
	logger.Info(ctx, "snapshot written", "dir", snapDir, "frame", cfg.Scene.Frames, "bodies", sc.Len())
	return nil
}
