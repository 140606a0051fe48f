package bssrdf

import (
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

// ProbeRay is a ray cast towards the surface from a disk sample above the
// shading point. Surface hits along the ray are candidate exit points of
// the subsurface path.
type ProbeRay struct {
	Origin types.Vec3
	Dir    types.Vec3
	TMax   float32

	// The sampled distance pair and the channel it was drawn from.
	Sample  SampledRadius
	Channel int

	// Local frame axes; the first one is the probe axis. PickPDF holds the
	// probability of each of them being picked as the probe axis.
	Axes    [3]types.Vec3
	PickPDF [3]float32
}

// Probe generates a subsurface probe ray for b at sd. u picks the probe axis
// (the normal with probability 0.5, each tangent with 0.25) and is then
// reused to sample the radius; v picks the angle on the disk. ok is false
// when b has no enabled channel.
func Probe(sd *closure.ShaderData, b *closure.Bssrdf, u, v float32) (ProbeRay, bool) {
	N := sd.N
	T, B := types.MakeOrthonormals(N)

	ray := ProbeRay{PickPDF: [3]float32{0.5, 0.25, 0.25}}
	switch {
	case u < 0.5:
		ray.Axes = [3]types.Vec3{N, T, B}
		u *= 2.0
	case u < 0.75:
		ray.Axes = [3]types.Vec3{T, N, B}
		u = (u - 0.5) * 4.0
	default:
		ray.Axes = [3]types.Vec3{B, T, N}
		u = (u - 0.75) * 4.0
	}

	channel, u, ok := SelectChannel(b.Radius, math32.Min(u, oneMinusEpsilon))
	if !ok {
		return ProbeRay{}, false
	}
	s := SampleChannel(b.Radius[channel], u)

	axis := ray.Axes[0]
	diskDir := types.QuatFromAxisAngle(axis, 2*math32.Pi*v).Rotate(ray.Axes[1])

	ray.Sample = s
	ray.Channel = channel
	ray.Origin = sd.P.Add(axis.Mul(s.H)).Add(diskDir.Mul(s.R))
	ray.Dir = axis.Mul(-1)
	ray.TMax = 2.0 * s.H
	return ray, true
}

// HitWeight returns the per-channel throughput of a probe hit at hitP with
// geometric normal hitNg, excluding the closure weight. The three probe axes
// are combined with the power heuristic.
func (ray ProbeRay) HitWeight(sd *closure.ShaderData, b *closure.Bssrdf, hitP, hitNg types.Vec3) types.Vec3 {
	r := hitP.Sub(sd.P).Len()

	pdf := PDFSpectrum(b.Radius, r)
	if pdf <= 0 {
		return types.Vec3{}
	}

	var axisPDF [3]float32
	var sumSq float32
	for i := range ray.Axes {
		axisPDF[i] = ray.PickPDF[i] * math32.Abs(ray.Axes[i].Dot(hitNg))
		sumSq += axisPDF[i] * axisPDF[i]
	}
	if sumSq <= 0 {
		return types.Vec3{}
	}

	w := axisPDF[0] / sumSq
	return EvalSpectrum(b.Radius, r).Mul(w / pdf)
}
