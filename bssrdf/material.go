package bssrdf

import (
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/material"
)

// SetupFromMaterial emits the closures of a subsurface material at sd. The
// material color acts as both the albedo and, multiplied by mixWeight, the
// closure weight. It returns the accumulated shading flags, which are also
// merged into sd.Flag.
func SetupFromMaterial(sd *closure.ShaderData, m material.Subsurface, mixWeight float32) closure.Flag {
	b, ok := Alloc(sd, m.Color.Mul(mixWeight))
	if !ok {
		return 0
	}

	b.Radius = m.ScaledRadius()
	b.Albedo = m.Color
	b.N = sd.N
	b.IOR = m.IOR
	b.Anisotropy = m.Anisotropy
	b.Roughness = m.Roughness
	if m.Method == closure.MethodRandomWalkSkin && b.IOR <= 0 {
		b.IOR = material.DefaultIOR
	}

	flag := Setup(sd, b, m.Method)
	sd.Flag |= flag
	return flag
}

// Find returns the first subsurface closure allocated on sd.
func Find(sd *closure.ShaderData) (*closure.Bssrdf, bool) {
	for i := 0; i < sd.Closures.Len(); i++ {
		if b, ok := sd.Closures.Get(closure.Index(i)).(*closure.Bssrdf); ok {
			return b, true
		}
	}
	return nil, false
}
