package device

import (
	"math"
	"sync/atomic"
)

// Float addition emulated with a compare-and-swap loop over the value's bit
// pattern.
func atomicAddFloat32(addr *uint32, v float32) float32 {
	for {
		oldBits := atomic.LoadUint32(addr)
		newVal := math.Float32frombits(oldBits) + v
		if atomic.CompareAndSwapUint32(addr, oldBits, math.Float32bits(newVal)) {
			return newVal
		}
	}
}

func atomicCompareExchange(addr *uint32, old, new uint32) uint32 {
	for {
		prev := atomic.LoadUint32(addr)
		if prev != old {
			return prev
		}
		if atomic.CompareAndSwapUint32(addr, old, new) {
			return old
		}
	}
}

// AtomicMaxFloat32 raises the float32 stored at addr to v if v is larger,
// using b's compare-exchange. NaN is ignored. It returns the resulting
// value.
func AtomicMaxFloat32(b Backend, addr *uint32, v float32) float32 {
	if v != v {
		return LoadFloat32(addr)
	}
	for {
		oldBits := atomic.LoadUint32(addr)
		oldVal := math.Float32frombits(oldBits)
		if oldVal >= v {
			return oldVal
		}
		if b.AtomicCompareExchange(addr, oldBits, math.Float32bits(v)) == oldBits {
			return v
		}
	}
}

// Read the float32 stored at addr.
func LoadFloat32(addr *uint32) float32 {
	return math.Float32frombits(atomic.LoadUint32(addr))
}
