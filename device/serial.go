package device

import (
	"context"
	"sync"
)

// A backend that runs every lane in order on the calling goroutine. Its
// results are deterministic, which makes it the reference for the CPU
// backend.
type serialDevice struct {
	mu sync.Mutex
}

func NewSerialDevice() Backend {
	return &serialDevice{}
}

func (d *serialDevice) Name() string {
	return "serial"
}

func (d *serialDevice) Type() DeviceType {
	return SerialDevice
}

func (d *serialDevice) Speed() uint32 {
	return 1
}

// Launches from different goroutines are serialized.
func (d *serialDevice) Launch(ctx context.Context, lanes int, kernel Kernel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for lane := 0; lane < lanes; lane++ {
		if lane%laneChunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := kernel(lane); err != nil {
			return err
		}
	}
	return nil
}

func (d *serialDevice) AtomicAddFloat32(addr *uint32, v float32) float32 {
	return atomicAddFloat32(addr, v)
}

func (d *serialDevice) AtomicCompareExchange(addr *uint32, old, new uint32) uint32 {
	return atomicCompareExchange(addr, old, new)
}

func (d *serialDevice) Barrier() {
	d.mu.Lock()
	d.mu.Unlock()
}
