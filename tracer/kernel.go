package tracer

import (
	"math/rand/v2"

	"github.com/UPBGE/upbge-sub036/bssrdf"
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/film"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

const planeEpsilon float32 = 1e-6

// Trace a single sample of job and accumulate its contribution. The random
// stream of a sample depends only on seed and index, so results do not
// depend on how samples are split across devices. sd is scratch space that
// gets overwritten with the closures of the job's shading point.
func traceSample(dev device.Backend, job *Job, sd *closure.ShaderData, seed uint64, index uint32) {
	rng := rand.New(rand.NewPCG(seed, uint64(index)))
	f := job.Film

	job.ShadeInto(sd)
	total := sd.TotalSampleWeight()
	c, xi, ok := sd.Pick(rng.Float32())
	if !ok {
		f.AddMiss()
		return
	}
	invPickPDF := total / c.Common().SampleWeight

	switch c := c.(type) {
	case *closure.Bssrdf:
		ray, ok := bssrdf.Probe(sd, c, xi, rng.Float32())
		if !ok || !finite(ray.Sample.R) {
			f.AddMiss()
			return
		}
		f.RecordProbe(dev, ray.Channel, ray.Sample.R)

		hitP, hit := intersectShadingPlane(ray, sd.P, sd.N)
		if !hit {
			f.AddMiss()
			return
		}
		w := ray.HitWeight(sd, c, hitP, sd.N).MulVec(c.Weight).Mul(invPickPDF)
		if !w.IsFinite() {
			f.AddMiss()
			return
		}
		f.Accumulate(dev, film.PassSubsurface, w)
	case closure.Bsdf:
		_, eval, pdf := c.Sample(sd.I, xi, rng.Float32())
		if pdf <= 0 {
			f.AddMiss()
			return
		}
		w := eval.Mul(1.0 / pdf).MulVec(c.Common().Weight).Mul(invPickPDF)
		if !w.IsFinite() {
			f.AddMiss()
			return
		}
		f.Accumulate(dev, film.PassDiffuse, w)
	default:
		f.AddMiss()
	}
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Intersect a probe ray with the tangent plane of the shading point, which
// stands in for the surrounding geometry.
func intersectShadingPlane(ray bssrdf.ProbeRay, P, N types.Vec3) (types.Vec3, bool) {
	denom := ray.Dir.Dot(N)
	if math32.Abs(denom) < planeEpsilon {
		return types.Vec3{}, false
	}

	t := P.Sub(ray.Origin).Dot(N) / denom
	if t < 0 || t > ray.TMax {
		return types.Vec3{}, false
	}
	return ray.Origin.Add(ray.Dir.Mul(t)), true
}
