package bssrdf

import "github.com/chewxy/math32"

const (
	// Convergence tolerance for the CDF inverter.
	Tolerance float32 = 1e-6

	// Upper bound on Newton-Raphson iterations per sample.
	MaxIterations = 10
)

// SampledRadius is the result of importance sampling the profile: R is the
// distance from the shading point in the tangent plane and H the probe ray
// offset such that H*H + R*R equals (Truncate*d)^2.
type SampledRadius struct {
	R float32
	H float32
}

// RootFind inverts the scaled profile CDF for xi in [0, TruncateCDF). The
// returned radius must be multiplied by the mean free path.
func RootFind(xi float32) float32 {
	r, _, _ := RootFindStats(xi)
	return r
}

// RootFindStats is RootFind that also reports the number of Newton steps
// taken and the final residual |f(r)|.
func RootFindStats(xi float32) (r float32, iterations int, residual float32) {
	// Curve fitted initial guess.
	if xi <= 0.9 {
		r = math32.Exp(xi*xi*2.4) - 1.0
	} else {
		r = 15.0
	}

	for iterations = 0; iterations < MaxIterations; iterations++ {
		expR3 := math32.Exp(-r / 3.0)
		expR := expR3 * expR3 * expR3
		f := 1.0 - 0.25*expR - 0.75*expR3 - xi
		fDeriv := 0.25*expR + 0.25*expR3

		residual = math32.Abs(f)
		if residual < Tolerance || fDeriv == 0 {
			return r, iterations, residual
		}

		r -= f / fDeriv
		if r < 0 {
			r = 0
		}
	}

	expR3 := math32.Exp(-r / 3.0)
	residual = math32.Abs(1.0 - 0.25*expR3*expR3*expR3 - 0.75*expR3 - xi)
	return r, iterations, residual
}

// SampleChannel draws a radius from the profile of a single channel with
// mean free path d using a uniform xi in [0, 1).
func SampleChannel(d, xi float32) SampledRadius {
	Rm := Truncate * d
	r := RootFind(xi*TruncateCDF) * d

	return SampledRadius{
		R: r,
		H: safeSqrt(Rm*Rm - r*r),
	}
}

func safeSqrt(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return math32.Sqrt(v)
}
