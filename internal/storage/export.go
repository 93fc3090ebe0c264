package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/sim"
)

type ExportData struct {
	Name       string             `json:"name"`
	Integrator string             `json:"integrator"`
	Mode       string             `json:"mode"`
	Timestep   float64            `json:"timestep"`
	Substeps   int                `json:"substeps"`
	Duration   float64            `json:"duration"`
	Frames     int                `json:"frames"`
	Bodies     []string           `json:"bodies"`
	Snapshots  []sim.Snapshot     `json:"snapshots"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(name string, cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Name:       name,
		Integrator: cfg.Integrator,
		Mode:       cfg.Material.Mode,
		Timestep:   cfg.Scene.Timestep,
		Substeps:   cfg.Scene.Substeps,
		Duration:   result.FinalTime,
		Frames:     result.FramesRun,
		Bodies:     result.Names,
		Snapshots:  result.Snapshots,
		Metrics:    result.Metrics,
	}
}

// ExportJSON writes an indented JSON document of the run to w.
func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
