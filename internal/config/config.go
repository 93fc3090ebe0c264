package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/shapesim/internal/softbody"
)

const (
	DefaultFrames   = 600
	DefaultSubsteps = 4
)

type Config struct {
	Integrator string         `yaml:"integrator"`
	Seed       int64          `yaml:"seed"`
	Scene      SceneConfig    `yaml:"scene"`
	Material   MaterialConfig `yaml:"material"`
	Bodies     []BodyConfig   `yaml:"bodies"`
}

type SceneConfig struct {
	Timestep    float64 `yaml:"timestep"`
	Substeps    int     `yaml:"substeps"`
	Frames      int     `yaml:"frames"`
	Gravity     float64 `yaml:"gravity"`
	WallDist    float64 `yaml:"wall_dist" gcfg:"wall-dist"`
	StickyFloor bool    `yaml:"sticky_floor" gcfg:"sticky-floor"`
}

type MaterialConfig struct {
	Mode            string  `yaml:"mode"`
	Stiffness       float64 `yaml:"stiffness"`
	LinearBlend     float64 `yaml:"linear_blend" gcfg:"linear-blend"`
	VelocityDamping float64 `yaml:"velocity_damping" gcfg:"velocity-damping"`
	WallSpring      float64 `yaml:"wall_spring" gcfg:"wall-spring"`
	WallDamping     float64 `yaml:"wall_damping" gcfg:"wall-damping"`
	SphereSpring    float64 `yaml:"sphere_spring" gcfg:"sphere-spring"`
	SphereDamping   float64 `yaml:"sphere_damping" gcfg:"sphere-damping"`
}

// BodyConfig places one mesh in the scene. Mesh is a primitive name or a
// path to an .obj file. Random replaces the x and z of Translate with a
// seeded random position inside [-1, 1].
type BodyConfig struct {
	Name      string     `yaml:"name,omitempty"`
	Mesh      string     `yaml:"mesh"`
	Translate [3]float64 `yaml:"translate,flow"`
	Scale     float64    `yaml:"scale,omitempty"`
	Mode      string     `yaml:"mode,omitempty"`
	Jitter    float64    `yaml:"jitter,omitempty"`
	Random    bool       `yaml:"random,omitempty"`
}

func DefaultConfig() *Config {
	p := softbody.DefaultParams()
	return &Config{
		Integrator: "modified-euler",
		Seed:       1,
		Scene: SceneConfig{
			Timestep: p.Timestep,
			Substeps: DefaultSubsteps,
			Frames:   DefaultFrames,
			Gravity:  p.Gravity,
			WallDist: p.WallDist,
		},
		Material: MaterialConfig{
			Mode:            p.Mode.String(),
			Stiffness:       p.Stiffness,
			LinearBlend:     p.LinearBlend,
			VelocityDamping: p.VelocityDamping,
			WallSpring:      p.WallSpring,
			WallDamping:     p.WallDamping,
			SphereSpring:    p.SphereSpring,
			SphereDamping:   p.SphereDamping,
		},
		Bodies: []BodyConfig{{Name: "sphere", Mesh: "sphere", Translate: [3]float64{0, 1, 0}}},
	}
}

// Load reads a YAML file, or an INI file when the extension is .ini or
// .gcfg. Unset values keep their defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return loadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = DefaultConfig().Bodies
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type iniRun struct {
	Integrator string
	Seed       int64
}

type iniBody struct {
	Mesh   string
	X      float64
	Y      float64
	Z      float64
	Scale  float64
	Mode   string
	Jitter float64
	Random bool
}

type iniFile struct {
	Run      iniRun
	Scene    SceneConfig
	Material MaterialConfig
	Body     map[string]*iniBody
}

func loadINI(path string) (*Config, error) {
	def := DefaultConfig()
	f := iniFile{
		Run:      iniRun{Integrator: def.Integrator, Seed: def.Seed},
		Scene:    def.Scene,
		Material: def.Material,
	}
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, err
	}
	return f.config(), nil
}

// ParseINI reads the INI form from a string.
func ParseINI(src string) (*Config, error) {
	def := DefaultConfig()
	f := iniFile{
		Run:      iniRun{Integrator: def.Integrator, Seed: def.Seed},
		Scene:    def.Scene,
		Material: def.Material,
	}
	if err := gcfg.ReadStringInto(&f, src); err != nil {
		return nil, err
	}
	return f.config(), nil
}

func (f *iniFile) config() *Config {
	cfg := &Config{
		Integrator: f.Run.Integrator,
		Seed:       f.Run.Seed,
		Scene:      f.Scene,
		Material:   f.Material,
	}
	names := make([]string, 0, len(f.Body))
	for n := range f.Body {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b := f.Body[n]
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:      n,
			Mesh:      b.Mesh,
			Translate: [3]float64{b.X, b.Y, b.Z},
			Scale:     b.Scale,
			Mode:      b.Mode,
			Jitter:    b.Jitter,
			Random:    b.Random,
		})
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = DefaultConfig().Bodies
	}
	return cfg
}

// Normalize clamps out-of-range values and returns a note for each change.
// Bad values never abort a run.
func (c *Config) Normalize() []string {
	var notes []string
	if c.Scene.Substeps < 1 {
		notes = append(notes, fmt.Sprintf("substeps %d clamped to 1", c.Scene.Substeps))
		c.Scene.Substeps = 1
	}
	if c.Scene.Frames < 1 {
		notes = append(notes, fmt.Sprintf("frames %d clamped to 1", c.Scene.Frames))
		c.Scene.Frames = 1
	}

	before := c.rawParams()
	p := before.Clamp()
	check := func(name string, was, now float64) {
		if was != now {
			notes = append(notes, fmt.Sprintf("%s %g clamped to %g", name, was, now))
		}
	}
	check("timestep", before.Timestep, p.Timestep)
	check("stiffness", before.Stiffness, p.Stiffness)
	check("linear_blend", before.LinearBlend, p.LinearBlend)
	check("velocity_damping", before.VelocityDamping, p.VelocityDamping)
	check("wall_dist", before.WallDist, p.WallDist)
	c.Scene.Timestep = p.Timestep
	c.Scene.WallDist = p.WallDist
	c.Material.Stiffness = p.Stiffness
	c.Material.LinearBlend = p.LinearBlend
	c.Material.VelocityDamping = p.VelocityDamping
	c.Material.WallSpring = p.WallSpring
	c.Material.WallDamping = p.WallDamping
	c.Material.SphereSpring = p.SphereSpring
	c.Material.SphereDamping = p.SphereDamping
	return notes
}

func (c *Config) rawParams() softbody.Params {
	return softbody.Params{
		Stiffness:       c.Material.Stiffness,
		LinearBlend:     c.Material.LinearBlend,
		VelocityDamping: c.Material.VelocityDamping,
		Timestep:        c.Scene.Timestep,
		Gravity:         c.Scene.Gravity,
		WallDist:        c.Scene.WallDist,
		WallSpring:      c.Material.WallSpring,
		WallDamping:     c.Material.WallDamping,
		SphereSpring:    c.Material.SphereSpring,
		SphereDamping:   c.Material.SphereDamping,
		StickyFloor:     c.Scene.StickyFloor,
	}
}

// Params returns the clamped body parameters for body i, applying its
// mode override.
func (c *Config) Params(i int) (softbody.Params, error) {
	p := c.rawParams()
	mode := c.Material.Mode
	if i >= 0 && i < len(c.Bodies) && c.Bodies[i].Mode != "" {
		mode = c.Bodies[i].Mode
	}
	m, err := softbody.ParseMode(mode)
	if err != nil {
		return p, err
	}
	p.Mode = m
	return p.Clamp(), nil
}

// Duration is the simulated time covered by the configured frames.
func (c *Config) Duration() float64 {
	return float64(c.Scene.Frames*c.Scene.Substeps) * c.Scene.Timestep
}
