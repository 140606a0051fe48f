// Package film accumulates the results of sampling kernels. All counters
// are updated with device atomics so that lanes of any backend can write
// to the same film concurrently.
package film

import (
	"fmt"
	"sync/atomic"

	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/types"
)

// Pass identifies an accumulation buffer.
type Pass uint8

const (
	// Throughput of subsurface probe hits.
	PassSubsurface Pass = iota

	// Throughput of diffuse and principled diffuse closures.
	PassDiffuse

	// Sum of all other passes.
	PassCombined

	numPasses
)

func (p Pass) String() string {
	switch p {
	case PassSubsurface:
		return "subsurface"
	case PassDiffuse:
		return "diffuse"
	case PassCombined:
		return "combined"
	}
	return fmt.Sprintf("pass(%d)", p)
}

// Passes lists the available passes in display order.
var Passes = []Pass{PassSubsurface, PassDiffuse, PassCombined}

// Film holds per-pass spectrum accumulators, per-channel selection counts
// and a histogram of sampled radii.
type Film struct {
	// Float accumulators stored as IEEE-754 bits.
	passes [numPasses][types.SpectrumChannels]uint32

	channels [types.SpectrumChannels]uint32
	samples  uint32
	misses   uint32

	// Largest sampled radius (float bits).
	maxRadius uint32

	histogram *Histogram
}

// Create a film whose radius histogram covers [0, maxRadius) with the given
// number of bins.
func New(bins int, maxRadius float32) (*Film, error) {
	h, err := NewHistogram(bins, maxRadius)
	if err != nil {
		return nil, err
	}
	return &Film{histogram: h}, nil
}

// Add v to pass and to the combined pass.
func (f *Film) Accumulate(b device.Backend, pass Pass, v types.Vec3) {
	for i := 0; i < types.SpectrumChannels; i++ {
		if v[i] == 0 {
			continue
		}
		b.AtomicAddFloat32(&f.passes[pass][i], v[i])
		if pass != PassCombined {
			b.AtomicAddFloat32(&f.passes[PassCombined][i], v[i])
		}
	}
}

// Record the channel and radius drawn by a subsurface probe.
func (f *Film) RecordProbe(b device.Backend, channel int, r float32) {
	atomic.AddUint32(&f.channels[channel], 1)
	f.histogram.add(r)
	device.AtomicMaxFloat32(b, &f.maxRadius, r)
}

// Count n processed samples.
func (f *Film) AddSamples(n uint32) {
	atomic.AddUint32(&f.samples, n)
}

// Count a sample that produced no contribution.
func (f *Film) AddMiss() {
	atomic.AddUint32(&f.misses, 1)
}

// Clear all accumulators.
func (f *Film) Reset() {
	for p := range f.passes {
		for i := range f.passes[p] {
			atomic.StoreUint32(&f.passes[p][i], 0)
		}
	}
	for i := range f.channels {
		atomic.StoreUint32(&f.channels[i], 0)
	}
	atomic.StoreUint32(&f.samples, 0)
	atomic.StoreUint32(&f.misses, 0)
	atomic.StoreUint32(&f.maxRadius, 0)
	f.histogram.reset()
}

// Histogram returns the radius histogram.
func (f *Film) Histogram() *Histogram {
	return f.histogram
}

// Snapshot is a consistent copy of the film counters. It should be taken
// after all launches writing to the film have completed.
type Snapshot struct {
	Samples  uint32
	Misses   uint32
	Channels [types.SpectrumChannels]uint32

	// Accumulated sums per pass.
	Sums [numPasses]types.Vec3

	MaxRadius float32
	Bins      []uint32
}

// Take a snapshot of the film counters.
func (f *Film) Snapshot() Snapshot {
	s := Snapshot{
		Samples:   atomic.LoadUint32(&f.samples),
		Misses:    atomic.LoadUint32(&f.misses),
		MaxRadius: device.LoadFloat32(&f.maxRadius),
		Bins:      f.histogram.Counts(),
	}
	for i := range f.channels {
		s.Channels[i] = atomic.LoadUint32(&f.channels[i])
	}
	for p := range f.passes {
		for i := range f.passes[p] {
			s.Sums[p][i] = device.LoadFloat32(&f.passes[p][i])
		}
	}
	return s
}

// Mean returns the per-sample estimate of pass.
func (s Snapshot) Mean(pass Pass) types.Vec3 {
	if s.Samples == 0 {
		return types.Vec3{}
	}
	return s.Sums[pass].Mul(1.0 / float32(s.Samples))
}
