package bssrdf

import "github.com/UPBGE/upbge-sub036/types"

// NumChannels counts the channels with a positive radius.
func NumChannels(radius types.Vec3) int {
	n := 0
	for i := 0; i < types.SpectrumChannels; i++ {
		if radius[i] > 0 {
			n++
		}
	}
	return n
}

// SelectChannel picks one enabled channel uniformly using xi in [0, 1) and
// returns xi remapped to [0, 1) so it can be reused for sampling the radius.
// Channels are visited in RGB order. ok is false when no channel is enabled.
func SelectChannel(radius types.Vec3, xi float32) (channel int, remapped float32, ok bool) {
	n := NumChannels(radius)
	if n == 0 {
		return -1, xi, false
	}

	xi *= float32(n)

	var sum float32
	last := -1
	for i := 0; i < types.SpectrumChannels; i++ {
		if radius[i] <= 0 {
			continue
		}
		sum += 1
		last = i
		if xi < sum {
			return i, xi - (sum - 1), true
		}
	}

	// xi*n rounded up to n; stay inside the last enabled channel.
	return last, oneMinusEpsilon, true
}

// Sample picks a channel and draws a radius from its profile, reusing the
// same random number for both decisions.
func Sample(radius types.Vec3, xi float32) (SampledRadius, bool) {
	channel, xi, ok := SelectChannel(radius, xi)
	if !ok {
		return SampledRadius{}, false
	}
	return SampleChannel(radius[channel], xi), true
}

const oneMinusEpsilon float32 = 0x1.fffffep-1
