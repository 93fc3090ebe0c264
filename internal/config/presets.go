package config

import "sort"

// Presets are complete scenes selectable by name.
var Presets = map[string]func() *Config{
	"drop": func() *Config {
		return DefaultConfig()
	},
	"testcase": func() *Config {
		c := DefaultConfig()
		c.Bodies = []BodyConfig{
			{Name: "soft", Mesh: "sphere", Translate: [3]float64{-0.5, 0, 0}, Mode: "shape_matching"},
			{Name: "rigid", Mesh: "sphere", Translate: [3]float64{0.5, 0, 0}, Mode: "rigid"},
		}
		return c
	},
	"jelly": func() *Config {
		c := DefaultConfig()
		c.Material.Mode = "linear"
		c.Material.LinearBlend = 0.5
		c.Material.Stiffness = 0.05
		c.Bodies = []BodyConfig{{Name: "jelly", Mesh: "ball", Translate: [3]float64{0, 1.2, 0}}}
		return c
	},
	"quadratic": func() *Config {
		c := DefaultConfig()
		c.Material.Mode = "quadratic"
		c.Material.LinearBlend = 0.3
		c.Bodies = []BodyConfig{{Name: "bender", Mesh: "sphere", Translate: [3]float64{0, 1, 0}, Jitter: 0.01}}
		return c
	},
	"pile": func() *Config {
		c := DefaultConfig()
		c.Seed = 7
		c.Bodies = nil
		for _, y := range []float64{-0.6, 0.1, 0.8, 1.5} {
			c.Bodies = append(c.Bodies, BodyConfig{Mesh: "sphere", Translate: [3]float64{0, y, 0}, Random: true})
		}
		return c
	},
	"sticky": func() *Config {
		c := DefaultConfig()
		c.Scene.StickyFloor = true
		c.Bodies = []BodyConfig{{Name: "cube", Mesh: "cube", Translate: [3]float64{0, 0.5, 0}}}
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
