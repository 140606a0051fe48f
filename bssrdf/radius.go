package bssrdf

import (
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

const alphaPrimeIterations = 12

// Rescales mean free path so the Burley and fixed radius random walk methods
// look similar to the older cubic and gaussian falloffs.
const burleyRadiusScale float32 = 0.25 / math32.Pi

// DiffuseReflectanceRatio returns the term A = (4/3)(1+Fdr)/(1-Fdr) derived
// from Jensen's fit of the diffuse Fresnel reflectance Fdr for relative
// index of refraction eta.
func DiffuseReflectanceRatio(eta float32) float32 {
	invEta := 1.0 / eta
	Fdr := invEta*(-1.440*invEta+0.710) + 0.668 + 0.0636*eta
	return (4.0 / 3.0) * (1.0 + Fdr) / (1.0 - Fdr)
}

// Total diffuse reflectance of the dipole model for reduced albedo
// alphaPrime.
func dipoleRd(alphaPrime, fourThirdA float32) float32 {
	s := math32.Sqrt(3.0 * (1.0 - alphaPrime))
	return 0.5 * alphaPrime * (1.0 + math32.Exp(-fourThirdA*s)) * math32.Exp(-s)
}

// AlphaPrime inverts the dipole diffuse reflectance: it returns the reduced
// single scattering albedo whose total diffuse reflectance equals rd.
func AlphaPrime(rd, fourThirdA float32) float32 {
	if rd < 1e-4 {
		return 0
	}
	if rd >= 0.995 {
		return 0.999999
	}

	// Rd is monotonic in alpha'; bisect.
	var x0, x1, xmid float32 = 0, 1, 0
	for i := 0; i < alphaPrimeIterations; i++ {
		xmid = 0.5 * (x0 + x1)
		if dipoleRd(xmid, fourThirdA) < rd {
			x0 = xmid
		} else {
			x1 = xmid
		}
	}
	return xmid
}

// SetupRadius converts the user facing radius of b into the mean free path
// used for sampling, according to the closure's method.
func SetupRadius(b *closure.Bssrdf) {
	if b.Method == closure.MethodBurley || b.Method == closure.MethodRandomWalkFixedRadius {
		b.Radius = b.Radius.Mul(burleyRadiusScale)
		return
	}

	fourThirdA := DiffuseReflectanceRatio(b.IOR)
	for i := 0; i < types.SpectrumChannels; i++ {
		alphaPrime := AlphaPrime(b.Albedo[i], fourThirdA)
		b.Radius[i] *= math32.Sqrt(3.0 * (1.0 - alphaPrime))
	}
}
