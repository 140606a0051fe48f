package renderer

type Options struct {
	// Total number of samples.
	Samples uint32

	// Number of batches the samples are split into. The scheduler uses
	// timings from each batch to balance the next one.
	Batches uint32

	// Seed for the per-sample random streams.
	Seed uint64

	// Number of radius histogram bins.
	HistogramBins int

	// Skip devices whose names contain any of these values.
	BlackListedDevices []string
}

// Fill in defaults for unset options.
func (o *Options) applyDefaults() {
	if o.Batches == 0 {
		o.Batches = 1
	}
	if o.Batches > o.Samples && o.Samples > 0 {
		o.Batches = o.Samples
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = 32
	}
}
