package material

import (
	"fmt"
	"strings"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

const (
	ParamMethod     = "method"
	ParamColor      = "color"
	ParamRadius     = "radius"
	ParamScale      = "scale"
	ParamIOR        = "ior"
	ParamRoughness  = "roughness"
	ParamAnisotropy = "anisotropy"
)

// Subsurface holds the resolved parameters of a subsurface scattering
// material as produced by shader evaluation.
type Subsurface struct {
	Name   string
	Method closure.Method

	// Surface color; used both as closure weight and as albedo.
	Color types.Vec3

	// Per-channel scattering radius, multiplied by Scale.
	Radius types.Vec3
	Scale  float32

	// Index of refraction. The random walk skin method accepts 0, which
	// selects DefaultIOR during closure setup.
	IOR float32

	// Retro-reflection roughness; nil disables the retro-reflection lobe.
	Roughness *float32

	Anisotropy float32
}

// Per-channel radius after applying the scale. Negative values are clamped
// to zero.
func (m Subsurface) ScaledRadius() types.Vec3 {
	return types.MaxVec3(m.Radius.Mul(m.Scale), types.Vec3{})
}

// Validate the material parameters.
func (m Subsurface) Validate() error {
	if m.Method.String() == "invalid" {
		return fmt.Errorf("material %q: invalid subsurface %s", m.Name, ParamMethod)
	}

	if !m.Color.IsFinite() {
		return fmt.Errorf("material %q: values for parameter %q must be finite", m.Name, ParamColor)
	}
	// Ensure energy conservation
	if m.Color[0] >= 1.0 || m.Color[1] >= 1.0 || m.Color[2] >= 1.0 {
		return fmt.Errorf("material %q: energy conservation violation for parameter %q; ensure that all vector components are < 1.0", m.Name, ParamColor)
	}
	if m.Color.MinComponent() < 0 {
		return fmt.Errorf("material %q: values for parameter %q must be >= 0", m.Name, ParamColor)
	}

	if !m.Radius.IsFinite() {
		return fmt.Errorf("material %q: values for parameter %q must be finite", m.Name, ParamRadius)
	}
	if m.Radius.MinComponent() < 0 {
		return fmt.Errorf("material %q: values for parameter %q must be >= 0", m.Name, ParamRadius)
	}
	if !finite(m.Scale) || m.Scale < 0 {
		return fmt.Errorf("material %q: value for parameter %q must be a finite value >= 0", m.Name, ParamScale)
	}
	if !m.Radius.Mul(m.Scale).IsFinite() {
		return fmt.Errorf("material %q: parameter %q scaled by %q overflows", m.Name, ParamRadius, ParamScale)
	}

	iorUnset := m.IOR == 0 && m.Method == closure.MethodRandomWalkSkin
	if !iorUnset && !(finite(m.IOR) && m.IOR > 0) {
		return fmt.Errorf("material %q: value for parameter %q must be a finite value > 0", m.Name, ParamIOR)
	}
	if m.Roughness != nil && !(*m.Roughness >= 0 && *m.Roughness <= 1.0) {
		return fmt.Errorf("material %q: value for parameter %q must be in the [0, 1] range", m.Name, ParamRoughness)
	}
	if !(m.Anisotropy >= -1.0 && m.Anisotropy <= 1.0) {
		return fmt.Errorf("material %q: value for parameter %q must be in the [-1, 1] range", m.Name, ParamAnisotropy)
	}

	return nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Lookup a known index of refraction by name.
func IOR(name string) (float32, error) {
	ior, found := KnownIORs[strings.ToLower(name)]
	if !found {
		return 0, fmt.Errorf("unknown IOR material name %q", name)
	}
	return ior, nil
}
