package film

import (
	"errors"
	"sync/atomic"
)

var (
	ErrInvalidBins  = errors.New("film: histogram needs at least one bin")
	ErrInvalidRange = errors.New("film: histogram range must be positive")
)

// Histogram counts sampled radii in equally sized bins over [0, MaxRadius).
// Values beyond the range land in the last bin.
type Histogram struct {
	MaxRadius float32
	bins      []uint32
}

func NewHistogram(bins int, maxRadius float32) (*Histogram, error) {
	if bins <= 0 {
		return nil, ErrInvalidBins
	}
	if !(maxRadius > 0) {
		return nil, ErrInvalidRange
	}
	return &Histogram{
		MaxRadius: maxRadius,
		bins:      make([]uint32, bins),
	}, nil
}

// Number of bins.
func (h *Histogram) Len() int {
	return len(h.bins)
}

// Bin returns the bin index for radius r. NaN maps to the first bin and
// +Inf to the last one.
func (h *Histogram) Bin(r float32) int {
	if !(r > 0) {
		return 0
	}
	if r >= h.MaxRadius {
		return len(h.bins) - 1
	}
	return min(int(r/h.MaxRadius*float32(len(h.bins))), len(h.bins)-1)
}

// Range of radii covered by bin.
func (h *Histogram) BinRange(bin int) (lo, hi float32) {
	width := h.MaxRadius / float32(len(h.bins))
	return float32(bin) * width, float32(bin+1) * width
}

// Expected returns the counts expected from total samples drawn from a
// distribution with the given cdf.
func (h *Histogram) Expected(cdf func(r float32) float32, total uint32) []float64 {
	out := make([]float64, len(h.bins))
	for bin := range out {
		lo, hi := h.BinRange(bin)
		p := float64(cdf(hi)) - float64(cdf(lo))
		if bin == len(out)-1 {
			p = 1 - float64(cdf(lo))
		}
		out[bin] = float64(total) * p
	}
	return out
}

// Counts returns a copy of the bin counts.
func (h *Histogram) Counts() []uint32 {
	out := make([]uint32, len(h.bins))
	for i := range h.bins {
		out[i] = atomic.LoadUint32(&h.bins[i])
	}
	return out
}

func (h *Histogram) add(r float32) {
	atomic.AddUint32(&h.bins[h.Bin(r)], 1)
}

func (h *Histogram) reset() {
	for i := range h.bins {
		atomic.StoreUint32(&h.bins[i], 0)
	}
}
