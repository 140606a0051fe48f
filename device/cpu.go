package device

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Number of lanes processed by a worker between cancellation checks.
const laneChunkSize = 256

// A backend that spreads the lanes of a launch over a pool of goroutines.
type cpuDevice struct {
	name    string
	workers int

	// Held for reading by every in-flight launch.
	inFlight sync.RWMutex
}

// Create a CPU backend using the given number of workers. A non-positive
// value selects runtime.NumCPU().
func NewCpuDevice(workers int) Backend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &cpuDevice{
		name:    fmt.Sprintf("%s/%s (%d workers)", runtime.GOOS, runtime.GOARCH, workers),
		workers: workers,
	}
}

func (d *cpuDevice) Name() string {
	return d.name
}

func (d *cpuDevice) Type() DeviceType {
	return CpuDevice
}

func (d *cpuDevice) Speed() uint32 {
	return uint32(d.workers)
}

func (d *cpuDevice) Launch(ctx context.Context, lanes int, kernel Kernel) error {
	d.inFlight.RLock()
	defer d.inFlight.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for start := 0; start < lanes; start += laneChunkSize {
		if err := gctx.Err(); err != nil {
			break
		}

		start, end := start, min(start+laneChunkSize, lanes)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for lane := start; lane < end; lane++ {
				if err := kernel(lane); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (d *cpuDevice) AtomicAddFloat32(addr *uint32, v float32) float32 {
	return atomicAddFloat32(addr, v)
}

func (d *cpuDevice) AtomicCompareExchange(addr *uint32, old, new uint32) uint32 {
	return atomicCompareExchange(addr, old, new)
}

func (d *cpuDevice) Barrier() {
	d.inFlight.Lock()
	d.inFlight.Unlock()
}
