package closure

import (
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

// Closures whose sample weight falls below this value are never allocated.
const WeightCutoff float32 = 1e-5

// Closure is implemented by every closure variant that can live in an Arena.
type Closure interface {
	Kind() Kind

	// Access the fields shared by all closure variants.
	Common() *Base
}

// Bsdf is implemented by closures that can be evaluated and sampled for a
// pair of directions.
type Bsdf interface {
	Closure

	// Evaluate the closure for outgoing direction I and incoming direction L.
	Eval(I, L types.Vec3) (types.Vec3, float32)

	// Sample an incoming direction using two uniform random numbers.
	Sample(I types.Vec3, u1, u2 float32) (L types.Vec3, eval types.Vec3, pdf float32)
}

// Base holds the fields shared by all closures.
type Base struct {
	Weight       types.Vec3
	SampleWeight float32
	N            types.Vec3
}

// Common implements Closure.
func (b *Base) Common() *Base {
	return b
}

// Diffuse is a plain lambertian closure.
type Diffuse struct {
	Base
}

func (c *Diffuse) Kind() Kind {
	return KindDiffuse
}

// Setup the diffuse closure and return the shading flags it contributes.
func (c *Diffuse) Setup() Flag {
	return SDBsdf | SDBsdfHasEval
}

func (c *Diffuse) Eval(I, L types.Vec3) (types.Vec3, float32) {
	cosPi := math32.Max(c.N.Dot(L), 0) * (1.0 / math32.Pi)
	return types.Splat(cosPi), cosPi
}

func (c *Diffuse) Sample(I types.Vec3, u1, u2 float32) (types.Vec3, types.Vec3, float32) {
	L, pdf := sampleCosHemisphere(c.N, u1, u2)
	if pdf <= 0 {
		return L, types.Vec3{}, 0
	}
	return L, types.Splat(pdf), pdf
}

// PrincipledDiffuse models the Disney diffuse lobe. The Components field
// selects whether the lambert part, the retro-reflection part or both are
// evaluated.
type PrincipledDiffuse struct {
	Base
	Roughness  float32
	Components Component
}

func (c *PrincipledDiffuse) Kind() Kind {
	return KindPrincipledDiffuse
}

// Setup the principled diffuse closure for the given components.
func (c *PrincipledDiffuse) Setup(components Component) Flag {
	c.Components = components
	return SDBsdf | SDBsdfHasEval
}

func (c *PrincipledDiffuse) Eval(I, L types.Vec3) (types.Vec3, float32) {
	NdotL := c.N.Dot(L)
	if NdotL <= 0 {
		return types.Vec3{}, 0
	}

	FV := SchlickFresnel(c.N.Dot(I))
	FL := SchlickFresnel(NdotL)

	var f float32
	if c.Components&Lambert != 0 {
		f += (1.0 - 0.5*FV) * (1.0 - 0.5*FL)
	}
	if c.Components&RetroReflection != 0 {
		// 2*dot(L, H)^2 = dot(L, V) + 1 for the half vector H
		LH2 := L.Dot(I) + 1
		RR := c.Roughness * LH2
		f += RR * (FL + FV + FL*FV*(RR-1.0))
	}

	pdf := NdotL * (1.0 / math32.Pi)
	return types.Splat(pdf * f), pdf
}

func (c *PrincipledDiffuse) Sample(I types.Vec3, u1, u2 float32) (types.Vec3, types.Vec3, float32) {
	L, pdf := sampleCosHemisphere(c.N, u1, u2)
	if pdf <= 0 {
		return L, types.Vec3{}, 0
	}
	eval, pdf := c.Eval(I, L)
	return L, eval, pdf
}

// Ad-hoc sampling weight for the retro-reflection lobe so that it does not
// take away half of the samples from a BSSRDF at the same shading point.
func (c *PrincipledDiffuse) RetroReflectionSampleWeight(I types.Vec3) float32 {
	return SchlickFresnel(c.N.Dot(I))
}

// Bssrdf is the subsurface scattering closure.
type Bssrdf struct {
	Base

	// Per-channel mean free path. Zero disables a channel.
	Radius types.Vec3

	// Per-channel single scattering albedo.
	Albedo types.Vec3

	// Roughness of the retro-reflection lobe; nil when the material
	// has no retro-reflection.
	Roughness *float32

	Anisotropy float32
	IOR        float32
	Method     Method
}

func (c *Bssrdf) Kind() Kind {
	return KindBssrdf
}

// Schlick's approximation weight (1-u)^5 with u clamped to [0, 1].
func SchlickFresnel(u float32) float32 {
	m := 1.0 - u
	if m < 0 {
		m = 0
	} else if m > 1 {
		m = 1
	}
	m2 := m * m
	return m2 * m2 * m
}

// Cosine weighted hemisphere sampling around N via concentric disk mapping.
func sampleCosHemisphere(N types.Vec3, u1, u2 float32) (types.Vec3, float32) {
	x, y := concentricDisk(u1, u2)
	z := math32.Sqrt(math32.Max(0, 1.0-x*x-y*y))

	T, B := types.MakeOrthonormals(N)
	L := T.Mul(x).Add(B.Mul(y)).Add(N.Mul(z))
	return L, z * (1.0 / math32.Pi)
}

func concentricDisk(u1, u2 float32) (float32, float32) {
	a := 2*u1 - 1
	b := 2*u2 - 1
	if a == 0 && b == 0 {
		return 0, 0
	}

	var r, phi float32
	if a*a > b*b {
		r = a
		phi = (math32.Pi / 4) * (b / a)
	} else {
		r = b
		phi = math32.Pi/2 - (math32.Pi/4)*(a/b)
	}
	sin, cos := math32.Sincos(phi)
	return r * cos, r * sin
}
