package device

import (
	"bytes"
	"fmt"
	"strings"
)

// Information about the host and the backends it provides.
type PlatformInfo struct {
	Name    string
	Devices []Backend
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Name:    %s\nDevices:\n", pl.Name))
	for dIdx, d := range pl.Devices {
		buf.WriteString(fmt.Sprintf("  Device %02d:\n", dIdx))
		buf.WriteString(indent(Describe(d), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

// Get information about the backends available on this host.
func GetPlatformInfo() PlatformInfo {
	cpu := NewCpuDevice(0)
	return PlatformInfo{
		Name: "host",
		Devices: []Backend{
			cpu,
			NewSerialDevice(),
		},
	}
}

// Select available devices that match the given query.
func SelectDevices(typeMask DeviceType, matchName string) []Backend {
	list := make([]Backend, 0)
	for _, d := range GetPlatformInfo().Devices {
		// Match type
		if d.Type()&typeMask != d.Type() {
			continue
		}

		// Match name
		if matchName != "" && !strings.Contains(d.Name(), matchName) {
			continue
		}

		list = append(list, d)
	}
	return list
}
