package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/shapesim/internal/config"
)

var setters = map[string]func(c *config.Config, v float64){
	"stiffness":        func(c *config.Config, v float64) { c.Material.Stiffness = v },
	"linear_blend":     func(c *config.Config, v float64) { c.Material.LinearBlend = v },
	"velocity_damping": func(c *config.Config, v float64) { c.Material.VelocityDamping = v },
	"timestep":         func(c *config.Config, v float64) { c.Scene.Timestep = v },
	"gravity":          func(c *config.Config, v float64) { c.Scene.Gravity = v },
	"wall_spring":      func(c *config.Config, v float64) { c.Material.WallSpring = v },
	"wall_damping":     func(c *config.Config, v float64) { c.Material.WallDamping = v },
	"sphere_spring":    func(c *config.Config, v float64) { c.Material.SphereSpring = v },
	"sphere_damping":   func(c *config.Config, v float64) { c.Material.SphereDamping = v },
}

// ApplyParams overrides numeric material and scene fields by name.
func ApplyParams(c *config.Config, params map[string]float64) error {
	for k, v := range params {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("unknown parameter: %s", k)
		}
		set(c, v)
	}
	return nil
}

// ParamNames lists the names ApplyParams accepts.
func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
