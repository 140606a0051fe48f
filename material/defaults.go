package material

import (
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
)

var (
	DefaultMethod             = closure.MethodRandomWalk
	DefaultColor              = types.Vec3{0.8, 0.8, 0.8}
	DefaultRadius             = types.Vec3{1.0, 0.2, 0.1}
	DefaultScale      float32 = 0.05
	DefaultIOR                = KnownIORs["skin"]
	DefaultAnisotropy float32 = 0.0
)

// Indices of refraction for a few scattering media, looked up by name.
var KnownIORs = map[string]float32{
	"air":    1.0,
	"water":  1.333,
	"milk":   1.35,
	"skin":   1.4,
	"wax":    1.44,
	"jade":   1.61,
	"marble": 1.486,
}

// Create a subsurface material initialized with the default parameters.
func Default(name string) Subsurface {
	return Subsurface{
		Name:       name,
		Method:     DefaultMethod,
		Color:      DefaultColor,
		Radius:     DefaultRadius,
		Scale:      DefaultScale,
		IOR:        DefaultIOR,
		Anisotropy: DefaultAnisotropy,
	}
}
