package renderer

import (
	"math"
	"time"

	"github.com/UPBGE/upbge-sub036/film"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance level used when testing the radius histogram.
const histogramSignificance = 0.001

type TracerStat struct {
	// The tracer id.
	Id string

	// True if this is the primary tracer
	IsPrimary bool

	// Samples traced in the last batch and the percentage of the batch they represent.
	BlockSize    uint32
	BatchPercent float32

	// Trace time for the assigned block
	BlockTime time.Duration
}

// Goodness of fit of the sampled radii against the analytic distribution.
type HistogramStats struct {
	Observed []uint32
	Expected []float64

	// Pearson's chi-squared statistic over bins with a non-zero
	// expectation and the critical value at histogramSignificance.
	ChiSquared       float64
	Critical         float64
	DegreesOfFreedom int
}

// True when the observed histogram is consistent with the expected one.
func (h HistogramStats) Consistent() bool {
	return h.ChiSquared <= h.Critical
}

type FrameStats struct {
	// Individual tracer stats for the last batch.
	Tracers []TracerStat

	// Film counters at the end of the render.
	Film film.Snapshot

	Histogram HistogramStats

	// Total render time.
	RenderTime time.Duration
}

// Compare observed bin counts against expected ones.
func analyseHistogram(observed []uint32, expected []float64) HistogramStats {
	h := HistogramStats{
		Observed: observed,
		Expected: expected,
	}

	obs := make([]float64, 0, len(observed))
	exp := make([]float64, 0, len(expected))
	for bin, e := range expected {
		if e <= 0 {
			if observed[bin] != 0 {
				h.ChiSquared = math.Inf(1)
			}
			continue
		}
		obs = append(obs, float64(observed[bin]))
		exp = append(exp, e)
	}

	h.DegreesOfFreedom = len(exp) - 1
	if h.DegreesOfFreedom < 1 {
		return h
	}
	if !math.IsInf(h.ChiSquared, 1) {
		h.ChiSquared = stat.ChiSquare(obs, exp)
	}
	h.Critical = distuv.ChiSquared{K: float64(h.DegreesOfFreedom)}.Quantile(1 - histogramSignificance)
	return h
}
