package softbody

import (
	"fmt"
	"strings"
)

// Mode selects the goal rule used by UpdateShape.
type Mode int

const (
	ShapeMatching Mode = iota
	RigidBody
	Linear
	Quadratic
)

var modeNames = [...]string{"shape_matching", "rigid", "linear", "quadratic"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles through the modes in declaration order.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// Modes lists every mode.
func Modes() []Mode {
	return []Mode{ShapeMatching, RigidBody, Linear, Quadratic}
}

// ParseMode accepts the names printed by String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shape_matching", "shapematching", "shape-matching", "default":
		return ShapeMatching, nil
	case "rigid", "rigidbody", "rigid_body":
		return RigidBody, nil
	case "linear":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	}
	return ShapeMatching, fmt.Errorf("unknown deformation mode: %s", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

const (
	MinTimestep     = 0.001
	DefaultWallDist = 1.9985
)

// Params are the per-body tunables. They can be changed between frames.
type Params struct {
	Mode            Mode
	Stiffness       float64 // α
	LinearBlend     float64 // β
	VelocityDamping float64 // δ
	Timestep        float64 // h
	Gravity         float64 // y component of the constant external force
	WallDist        float64 // half-extent of the wall box
	WallSpring      float64
	WallDamping     float64
	SphereSpring    float64
	SphereDamping   float64
	StickyFloor     bool // freeze vertices that reach the floor
}

func DefaultParams() Params {
	return Params{
		Mode:            ShapeMatching,
		Stiffness:       0.1,
		LinearBlend:     0.15,
		VelocityDamping: 0.01,
		Timestep:        0.002,
		Gravity:         -0.7,
		WallDist:        DefaultWallDist,
		WallSpring:      70,
		WallDamping:     0.2,
		SphereSpring:    50,
		SphereDamping:   0.2,
	}
}

// Clamp returns p with out-of-range values pulled back into range.
// Configuration mistakes never abort a run.
func (p Params) Clamp() Params {
	if !(p.Timestep > 0) {
		p.Timestep = MinTimestep
	}
	p.Stiffness = clamp01(p.Stiffness)
	p.LinearBlend = clamp01(p.LinearBlend)
	p.VelocityDamping = clamp01(p.VelocityDamping)
	if !(p.WallDist > 0) {
		p.WallDist = DefaultWallDist
	}
	p.WallSpring = max(p.WallSpring, 0)
	p.WallDamping = max(p.WallDamping, 0)
	p.SphereSpring = max(p.SphereSpring, 0)
	p.SphereDamping = max(p.SphereDamping, 0)
	if p.Mode < ShapeMatching || p.Mode > Quadratic {
		p.Mode = ShapeMatching
	}
	return p
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
