package closure

import (
	"strings"

	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

// Flag is the set of shading flags accumulated by a shading point.
type Flag uint32

const (
	SDBsdf Flag = 1 << iota
	SDBsdfHasEval
	SDBssrdf
)

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&SDBsdf != 0 {
		parts = append(parts, "bsdf")
	}
	if f&SDBsdfHasEval != 0 {
		parts = append(parts, "bsdfHasEval")
	}
	if f&SDBssrdf != 0 {
		parts = append(parts, "bssrdf")
	}
	return strings.Join(parts, "|")
}

// ShaderData describes the surface point being shaded along with the
// closures emitted for it.
type ShaderData struct {
	// Shading position, normal and direction towards the viewer.
	P types.Vec3
	N types.Vec3
	I types.Vec3

	Flag     Flag
	Closures *Arena
}

// Create shader data with a closure arena of the given capacity.
func NewShaderData(P, N, I types.Vec3, capacity int) *ShaderData {
	return &ShaderData{
		P:        P,
		N:        N,
		I:        I,
		Closures: NewArena(capacity),
	}
}

// Clear flags and closures so the record can be reused for the next sample.
func (sd *ShaderData) Reset() {
	sd.Flag = 0
	sd.Closures.Reset()
}

// Allocate a closure carrying weight. The closure's sample weight is set to
// |average(weight)|. Returns false when that weight is below WeightCutoff or
// when the arena is full.
func (sd *ShaderData) Alloc(c Closure, weight types.Vec3) bool {
	sampleWeight := math32.Abs(weight.Average())
	if sampleWeight < WeightCutoff {
		return false
	}

	if _, ok := sd.Closures.Alloc(c); !ok {
		return false
	}

	base := c.Common()
	base.Weight = weight
	base.SampleWeight = sampleWeight
	return true
}

// Sum of the sample weights of all allocated closures.
func (sd *ShaderData) TotalSampleWeight() float32 {
	var sum float32
	sd.Closures.Each(func(_ Index, c Closure) {
		sum += c.Common().SampleWeight
	})
	return sum
}

// Pick a closure proportionally to its sample weight. xi is rescaled so that
// it can be reused by the picked closure. Returns false when no closure
// carries any sample weight.
func (sd *ShaderData) Pick(xi float32) (Closure, float32, bool) {
	total := sd.TotalSampleWeight()
	if total <= 0 {
		return nil, xi, false
	}

	r := xi * total
	var partial float32
	var last Closure
	var lastWeight, lastPartial float32
	for i := 0; i < sd.Closures.Len(); i++ {
		c := sd.Closures.Get(Index(i))
		w := c.Common().SampleWeight
		if w <= 0 {
			continue
		}
		if r < partial+w {
			return c, (r - partial) / w, true
		}
		last, lastWeight, lastPartial = c, w, partial
		partial += w
	}

	// Rounding pushed r to the total; fall back to the last weighted closure.
	return last, math32.Min((r-lastPartial)/lastWeight, oneMinusEpsilon), true
}

const oneMinusEpsilon float32 = 0x1.fffffep-1
