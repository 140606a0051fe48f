// Package bssrdf implements importance sampling of the Burley diffusion
// profile and the setup of subsurface scattering closures.
//
// All functions in this package are pure and safe to call concurrently from
// any number of goroutines.
package bssrdf

import (
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

const (
	// Radii below this value cannot be sampled without precision issues
	// and are rendered as diffuse reflection instead.
	MinRadius float32 = 1e-4

	// The profile is truncated at Truncate*d.
	Truncate float32 = 16.0

	// Value of the scaled profile CDF at the truncation radius.
	TruncateCDF float32 = 0.9963790093708328
)

// Eval returns the Burley reflectance profile for mean free path d at
// distance r. The surface albedo is carried by the closure weight and is
// not part of this term. The profile is normalized over the plane so it
// matches the CDF inverted by RootFind.
func Eval(d, r float32) float32 {
	if r >= Truncate*d {
		return 0
	}

	expR3D := math32.Exp(-r / (3.0 * d))
	expRD := expR3D * expR3D * expR3D
	return (expRD + expR3D) / (4.0 * d)
}

// PDF returns the density of the truncated profile at distance r.
func PDF(d, r float32) float32 {
	if r == 0 {
		return 0
	}
	return Eval(d, r) * (1.0 / TruncateCDF)
}

// CDF returns the probability of sampling a distance below r from the
// truncated profile with mean free path d.
func CDF(d, r float32) float32 {
	if r <= 0 {
		return 0
	}
	if r >= Truncate*d {
		return 1
	}

	expR3D := math32.Exp(-r / (3.0 * d))
	expRD := expR3D * expR3D * expR3D
	return (1.0 - 0.25*expRD - 0.75*expR3D) * (1.0 / TruncateCDF)
}

// CDFSpectrum is the CDF of the distance distribution produced by Sample.
func CDFSpectrum(radius types.Vec3, r float32) float32 {
	n := NumChannels(radius)
	if n == 0 {
		return 0
	}

	var sum float32
	for i := 0; i < types.SpectrumChannels; i++ {
		if radius[i] > 0 {
			sum += CDF(radius[i], r)
		}
	}
	return sum / float32(n)
}

// EvalSpectrum evaluates the truncated profile density of every enabled
// channel at distance r.
func EvalSpectrum(radius types.Vec3, r float32) types.Vec3 {
	var out types.Vec3
	for i := 0; i < types.SpectrumChannels; i++ {
		if radius[i] > 0 {
			out[i] = PDF(radius[i], r)
		}
	}
	return out
}

// PDFSpectrum returns the density of sampling distance r when a channel is
// picked uniformly among the enabled ones and r is then drawn from that
// channel's profile.
func PDFSpectrum(radius types.Vec3, r float32) float32 {
	n := NumChannels(radius)
	if n == 0 {
		return 0
	}
	return EvalSpectrum(radius, r).Sum() / float32(n)
}
