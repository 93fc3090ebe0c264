// Package storage keeps finished runs on disk: metadata as JSON, the
// configuration as YAML, the trajectory as CSV and mesh snapshots as OBJ.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	configFile     = "config.yaml"
	trajectoryFile = "trajectory.csv"

	fieldsPerBody = 8
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Timestep   float64            `json:"timestep"`
	Substeps   int                `json:"substeps"`
	Frames     int                `json:"frames"`
	FramesRun  int                `json:"frames_run"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Mode       string             `json:"mode"`
	Bodies     []string           `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes a run under a new directory and returns its ID.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Timestep:   cfg.Scene.Timestep,
		Substeps:   cfg.Scene.Substeps,
		Frames:     cfg.Scene.Frames,
		FramesRun:  result.FramesRun,
		Duration:   result.FinalTime,
		Integrator: cfg.Integrator,
		Mode:       cfg.Material.Mode,
		Bodies:     result.Names,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeTrajectory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"frame", "time", "contacts"}
	for _, n := range result.Names {
		for _, col := range []string{"cx", "cy", "cz", "r", "vx", "vy", "vz", "ke"} {
			header = append(header, n+"_"+col)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Snapshots {
		row := []string{strconv.Itoa(snap.Frame), formatFloat(snap.Time), strconv.Itoa(snap.Contacts)}
		for _, b := range snap.Bodies {
			row = append(row,
				formatFloat(b.Center[0]), formatFloat(b.Center[1]), formatFloat(b.Center[2]),
				formatFloat(b.Radius),
				formatFloat(b.AverageVelocity[0]), formatFloat(b.AverageVelocity[1]), formatFloat(b.AverageVelocity[2]),
				formatFloat(b.Energy),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads back the configuration a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

// LoadSnapshots parses a run's trajectory. Malformed rows are skipped.
func (s *Store) LoadSnapshots(runID string) ([]sim.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Snapshot{}, nil
	}

	nBodies := (len(records[0]) - 3) / fieldsPerBody
	snaps := make([]sim.Snapshot, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 3+nBodies*fieldsPerBody {
			continue
		}
		vals, err := parseFloats(record)
		if err != nil {
			continue
		}
		snap := sim.Snapshot{Frame: int(vals[0]), Time: vals[1], Contacts: int(vals[2])}
		for b := 0; b < nBodies; b++ {
			v := vals[3+b*fieldsPerBody:]
			snap.Bodies = append(snap.Bodies, sim.BodyState{
				Center:          mgl64.Vec3{v[0], v[1], v[2]},
				Radius:          v[3],
				AverageVelocity: mgl64.Vec3{v[4], v[5], v[6]},
				Energy:          v[7],
			})
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func parseFloats(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, f := range record {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SaveMesh writes the current shape of m into the run directory as
// <name>.obj and returns the path.
func (s *Store) SaveMesh(runID, name string, m *mesh.Mesh) (string, error) {
	path := filepath.Join(s.Dir(runID), name+".obj")
	if err := mesh.SaveOBJ(path, m); err != nil {
		return "", err
	}
	return path, nil
}
