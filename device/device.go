package device

import (
	"context"
	"fmt"
	"regexp"
)

type DeviceType uint8

// Supported device types.
const (
	CpuDevice DeviceType = 1 << iota
	SerialDevice

	AllDevices DeviceType = 0xFF
)

var (
	indentRegex = regexp.MustCompile("(?m)^")
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case SerialDevice:
		return "Serial"
	case AllDevices:
		return "All"
	}
	panic("device: unsupported device type")
}

// Parse a device type name as printed by String. The special name "all"
// matches every device type.
func ParseType(name string) (DeviceType, error) {
	switch name {
	case "CPU", "cpu":
		return CpuDevice, nil
	case "Serial", "serial":
		return SerialDevice, nil
	case "all", "":
		return AllDevices, nil
	}
	return 0, fmt.Errorf("device: unknown device type %q", name)
}

// A Kernel is invoked once per lane of a launch. Lanes of the same launch may
// run concurrently and must not depend on each other's ordering.
type Kernel func(lane int) error

// Backend is implemented by every device capable of running sampling
// kernels. The numerical kernels never call a backend directly; it only
// dispatches them and provides the atomics used to merge their results.
type Backend interface {
	// Device name.
	Name() string

	// Device type.
	Type() DeviceType

	// Relative speed estimate compared to the serial baseline.
	Speed() uint32

	// Run kernel for lanes [0, lanes) and block until every lane has
	// completed. The first kernel error aborts the launch.
	Launch(ctx context.Context, lanes int, kernel Kernel) error

	// Atomically add v to the float32 stored (as its IEEE-754 bits) at
	// addr and return the new value.
	AtomicAddFloat32(addr *uint32, v float32) float32

	// Atomically replace the value at addr with new if it equals old.
	// The previous value is returned.
	AtomicCompareExchange(addr *uint32, old, new uint32) uint32

	// Block until all launches started before the call have completed.
	// It must not be invoked from within a kernel.
	Barrier()
}

// Describe a backend in the same layout used by platform listings.
func Describe(b Backend) string {
	return fmt.Sprintf(
		"Name:  %s\nType:  %s\nSpeed: %d",
		b.Name(),
		b.Type(),
		b.Speed(),
	)
}

// Indent every line of s.
func indent(s, prefix string) string {
	return indentRegex.ReplaceAllString(s, prefix)
}
