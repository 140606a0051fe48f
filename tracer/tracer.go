package tracer

import (
	"context"
	"time"
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Cancelling the context aborts the block between lane chunks.
	Ctx context.Context

	// Index of the first sample and number of samples in the block.
	SampleOffset uint32
	SampleCount  uint32

	// A random seed value shared by all blocks of a render. Each sample
	// derives its own random stream from the seed and its index.
	Seed uint64

	// A channel to signal on block completion with the number of completed samples.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The number of samples in the last traced block.
	BlockSize uint32

	// The time for tracing this block.
	BlockTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline (serial) implementation.
	SpeedEstimate() float32

	// Setup the tracer for a sampling job.
	Setup(job *Job) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last block statistics.
	Stats() *Stats
}
