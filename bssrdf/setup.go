package bssrdf

import (
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

// Clamps protecting against extreme and non physical parameter values.
const (
	minAnisotropy float32 = 0.0
	maxAnisotropy float32 = 0.9
	minIOR        float32 = 1.01
	maxIOR        float32 = 3.8
)

// Alloc reserves a BSSRDF closure carrying weight on sd. It returns false
// when the closure arena is exhausted or the weight is negligible.
func Alloc(sd *closure.ShaderData, weight types.Vec3) (*closure.Bssrdf, bool) {
	b := &closure.Bssrdf{}
	if !sd.Alloc(b, weight) {
		return nil, false
	}
	return b, true
}

// Setup finalizes a BSSRDF closure previously returned by Alloc and returns
// the shading flags produced by it and any auxiliary closures.
//
// Channels whose radius is too small to be sampled reliably, or is NaN, are
// moved to a diffuse closure. When a roughness is set, a retro-reflection lobe is
// added as well. Failing to allocate an auxiliary closure drops its
// contribution. When no channel survives, the BSSRDF keeps a zero sample
// weight and the SDBssrdf flag is not set.
func Setup(sd *closure.ShaderData, b *closure.Bssrdf, method closure.Method) closure.Flag {
	b.Anisotropy = clamp(b.Anisotropy, minAnisotropy, maxAnisotropy)
	b.IOR = clamp(b.IOR, minIOR, maxIOR)
	b.Method = method

	var flag closure.Flag

	if b.Roughness != nil {
		retro := &closure.PrincipledDiffuse{Roughness: *b.Roughness}
		if sd.Alloc(retro, b.Weight) {
			retro.N = b.N
			flag |= retro.Setup(closure.RetroReflection)
			retro.SampleWeight *= retro.RetroReflectionSampleWeight(sd.I)
		}
	}

	channels := types.SpectrumChannels
	var diffuseWeight types.Vec3
	for i := 0; i < types.SpectrumChannels; i++ {
		if !(b.Radius[i] >= MinRadius) {
			diffuseWeight[i] = b.Weight[i]
			b.Weight[i] = 0
			b.Radius[i] = 0
			channels--
		}
	}

	if channels < types.SpectrumChannels {
		flag |= addDiffuseFallback(sd, b, diffuseWeight)
	}

	if channels > 0 {
		b.SampleWeight = math32.Abs(b.Weight.Average()) * float32(channels)
		SetupRadius(b)
		flag |= closure.SDBssrdf
	} else {
		b.SampleWeight = 0
	}

	return flag
}

func addDiffuseFallback(sd *closure.ShaderData, b *closure.Bssrdf, weight types.Vec3) closure.Flag {
	if b.Roughness != nil {
		bsdf := &closure.PrincipledDiffuse{Roughness: *b.Roughness}
		if !sd.Alloc(bsdf, weight) {
			return 0
		}
		bsdf.N = b.N
		return bsdf.Setup(closure.Lambert)
	}

	bsdf := &closure.Diffuse{}
	if !sd.Alloc(bsdf, weight) {
		return 0
	}
	bsdf.N = b.N
	return bsdf.Setup()
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
