package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split a batch of samples into blocks of variable size and assign
	// them to the pool of tracers using feedback collected from previous
	// batches.
	//
	// This function returns the block size assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, samples uint32) []uint32
}

// The perfect scheduler assumes that the cost of a sample stays
// approximately the same between two subsequent batches.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split a batch into blocks and assign them to the pool of tracers.
//
// When previous batch information is available the scheduler uses the
// following formula for estimating the workload for tracer w and batch i+1:
// w_i, b_i+1 = (blockSize,w_i / time,w_i) / Σ(blockSize_i / time,i)
//
// Otherwise, or when the number of tracers has changed, samples are
// distributed according to each tracer's speed estimate.
func (sch *perfectScheduler) Schedule(tracers []Tracer, samples uint32) []uint32 {
	if len(tracers) == 0 {
		return nil
	}

	weights := make([]float64, len(tracers))
	useStats := len(sch.blockAssignment) == len(tracers)
	if useStats {
		for idx, tr := range tracers {
			stats := tr.Stats()
			if stats.BlockSize == 0 || stats.BlockTime <= 0 {
				useStats = false
				break
			}
			weights[idx] = float64(stats.BlockSize) / float64(stats.BlockTime)
		}
	}

	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if !useStats {
		sch.blockAssignment = make([]uint32, len(tracers))
		for idx, tr := range tracers {
			weights[idx] = float64(tr.SpeedEstimate())
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if !(total > 0) {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(len(weights))
	}
	scaler := float64(samples) / total

	// Every tracer receives at least one sample when there are enough to go around
	minBlock := 0.0
	if samples >= uint32(len(tracers)) {
		minBlock = 1.0
	}

	var scheduled uint32
	for idx, w := range weights {
		sch.blockAssignment[idx] = uint32(math.Max(minBlock, math.Floor(w*scaler)))
		scheduled += sch.blockAssignment[idx]
	}

	// Take back any oversubscribed samples from the largest blocks
	for scheduled > samples {
		largest := 0
		for idx, size := range sch.blockAssignment {
			if size > sch.blockAssignment[largest] {
				largest = idx
			}
		}
		sch.blockAssignment[largest]--
		scheduled--
	}

	// In case samples don't add up to the batch size append the missing ones to the first tracer
	sch.blockAssignment[0] += samples - scheduled

	return sch.blockAssignment
}
