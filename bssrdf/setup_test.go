package bssrdf

import (
	"testing"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/material"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

var (
	upNormal = types.XYZ(0, 0, 1)
	origin   = types.Vec3{}
)

func newShaderData(capacity int) *closure.ShaderData {
	return closure.NewShaderData(origin, upNormal, upNormal, capacity)
}

func TestSetupDiffuseFallback(t *testing.T) {
	sd := newShaderData(closure.MaxClosures)
	b, ok := Alloc(sd, types.XYZ(1, 1, 1))
	if !ok {
		t.Fatal("expected bssrdf allocation to succeed")
	}
	b.N = sd.N
	b.Radius = types.XYZ(0.00001, 1, 1)

	flag := Setup(sd, b, closure.MethodBurley)

	expFlag := closure.SDBsdf | closure.SDBsdfHasEval | closure.SDBssrdf
	if flag != expFlag {
		t.Fatalf("expected flag %s; got %s", expFlag, flag)
	}
	if sd.Closures.Len() != 2 {
		t.Fatalf("expected 2 closures; got %d", sd.Closures.Len())
	}

	diffuse, ok := sd.Closures.Get(1).(*closure.Diffuse)
	if !ok {
		t.Fatalf("expected second closure to be diffuse; got %s", sd.Closures.Get(1).Kind())
	}
	if diffuse.Weight != types.XYZ(1, 0, 0) {
		t.Fatalf("expected diffuse weight (1, 0, 0); got %v", diffuse.Weight)
	}
	if diffuse.N != upNormal {
		t.Fatalf("expected diffuse normal to match the bssrdf normal; got %v", diffuse.N)
	}

	if b.Weight != types.XYZ(0, 1, 1) {
		t.Fatalf("expected bssrdf weight (0, 1, 1); got %v", b.Weight)
	}
	if !approx(b.SampleWeight, 4.0/3.0, 1e-6) {
		t.Fatalf("expected bssrdf sample weight %g; got %g", 4.0/3.0, b.SampleWeight)
	}

	expRadius := types.XYZ(0, burleyRadiusScale, burleyRadiusScale)
	if !types.ApproxEqual(b.Radius, expRadius, 1e-7) {
		t.Fatalf("expected radius %v; got %v", expRadius, b.Radius)
	}
}

func TestSetupAllChannelsBelowMinRadius(t *testing.T) {
	sd := newShaderData(closure.MaxClosures)
	b, _ := Alloc(sd, types.XYZ(0.5, 0.5, 0.5))
	b.N = sd.N
	b.Radius = types.Splat(MinRadius * 0.5)

	flag := Setup(sd, b, closure.MethodRandomWalk)
	if flag != closure.SDBsdf|closure.SDBsdfHasEval {
		t.Fatalf("expected only bsdf flags; got %s", flag)
	}
	if b.SampleWeight != 0 {
		t.Fatalf("expected bssrdf sample weight to be 0; got %g", b.SampleWeight)
	}
	if !b.Radius.IsZero() {
		t.Fatalf("expected all radii to be disabled; got %v", b.Radius)
	}

	picked, _, ok := sd.Pick(0.99)
	if !ok || picked.Kind() != closure.KindDiffuse {
		t.Fatal("expected only the diffuse closure to be pickable")
	}
}

func TestSetupNaNRadiusFallsBack(t *testing.T) {
	sd := newShaderData(closure.MaxClosures)
	b, _ := Alloc(sd, types.XYZ(1, 1, 1))
	b.N = sd.N
	b.Radius = types.XYZ(math32.NaN(), 1, 1)

	if flag := Setup(sd, b, closure.MethodBurley); flag&closure.SDBssrdf == 0 {
		t.Fatalf("expected the remaining channels to keep the bssrdf; got %s", flag)
	}
	if !b.Radius.IsFinite() || b.Radius[0] != 0 {
		t.Fatalf("expected the NaN channel to be disabled; got radius %v", b.Radius)
	}
	if b.Weight != types.XYZ(0, 1, 1) {
		t.Fatalf("expected the NaN channel weight to move to the fallback; got %v", b.Weight)
	}
	if NumChannels(b.Radius) != 2 {
		t.Fatalf("expected 2 sampleable channels; got %d", NumChannels(b.Radius))
	}
}

func TestSetupFallbackWithRoughness(t *testing.T) {
	roughness := float32(0.5)
	sd := newShaderData(closure.MaxClosures)
	b, _ := Alloc(sd, types.XYZ(1, 1, 1))
	b.N = sd.N
	b.Roughness = &roughness
	b.Radius = types.XYZ(1, 0, 1)

	Setup(sd, b, closure.MethodBurley)

	if sd.Closures.Len() != 3 {
		t.Fatalf("expected bssrdf, retro-reflection and fallback closures; got %d closures", sd.Closures.Len())
	}

	retro, ok := sd.Closures.Get(1).(*closure.PrincipledDiffuse)
	if !ok || retro.Components != closure.RetroReflection {
		t.Fatal("expected second closure to be a retro-reflection lobe")
	}
	lambert, ok := sd.Closures.Get(2).(*closure.PrincipledDiffuse)
	if !ok || lambert.Components != closure.Lambert {
		t.Fatal("expected third closure to be a lambert principled diffuse lobe")
	}
	if lambert.Roughness != roughness || lambert.Weight != types.XYZ(0, 1, 0) {
		t.Fatalf("unexpected fallback closure: roughness %g weight %v", lambert.Roughness, lambert.Weight)
	}
}

func TestSetupRetroReflectionSampleWeight(t *testing.T) {
	roughness := float32(0.3)

	// cos(theta) = 0.5 between the normal and the view direction.
	I := types.XYZ(0, math32.Sqrt(0.75), 0.5)
	sd := closure.NewShaderData(origin, upNormal, I, closure.MaxClosures)

	b, _ := Alloc(sd, types.XYZ(1, 1, 1))
	b.N = sd.N
	b.Roughness = &roughness
	b.Radius = types.XYZ(1, 1, 1)

	flag := Setup(sd, b, closure.MethodRandomWalk)
	if flag != closure.SDBsdf|closure.SDBsdfHasEval|closure.SDBssrdf {
		t.Fatalf("unexpected flag %s", flag)
	}

	retro := sd.Closures.Get(1).Common()
	if !approx(retro.SampleWeight, 0.03125, 1e-6) {
		t.Fatalf("expected retro-reflection sample weight 0.03125; got %g", retro.SampleWeight)
	}
	if retro.Weight != types.XYZ(1, 1, 1) {
		t.Fatalf("expected retro-reflection to carry the full weight; got %v", retro.Weight)
	}
}

func TestSetupClamps(t *testing.T) {
	type spec struct {
		anisotropy, ior       float32
		expAnisotropy, expIOR float32
	}
	specs := []spec{
		{1.5, 0.5, maxAnisotropy, minIOR},
		{-0.5, 10, minAnisotropy, maxIOR},
		{0.4, 1.3, 0.4, 1.3},
	}

	for index, s := range specs {
		sd := newShaderData(closure.MaxClosures)
		b, _ := Alloc(sd, types.XYZ(1, 1, 1))
		b.Radius = types.Splat(1)
		b.Anisotropy = s.anisotropy
		b.IOR = s.ior

		Setup(sd, b, closure.MethodRandomWalkSkin)
		if b.Anisotropy != s.expAnisotropy {
			t.Errorf("[spec %d] expected anisotropy %g; got %g", index, s.expAnisotropy, b.Anisotropy)
		}
		if b.IOR != s.expIOR {
			t.Errorf("[spec %d] expected IOR %g; got %g", index, s.expIOR, b.IOR)
		}
		if b.Method != closure.MethodRandomWalkSkin {
			t.Errorf("[spec %d] expected method to be recorded; got %s", index, b.Method)
		}
	}
}

func TestSetupRadius(t *testing.T) {
	for _, method := range []closure.Method{closure.MethodBurley, closure.MethodRandomWalkFixedRadius} {
		b := &closure.Bssrdf{Radius: types.XYZ(1, 2, 0), Method: method}
		SetupRadius(b)
		exp := types.XYZ(burleyRadiusScale, 2*burleyRadiusScale, 0)
		if !types.ApproxEqual(b.Radius, exp, 1e-7) {
			t.Fatalf("%s: expected radius %v; got %v", method, exp, b.Radius)
		}
	}

	// A zero albedo maps to alpha' = 0 and scales the radius by sqrt(3).
	b := &closure.Bssrdf{Radius: types.XYZ(1, 1, 1), IOR: 1.4, Method: closure.MethodRandomWalk}
	SetupRadius(b)
	if !types.ApproxEqual(b.Radius, types.Splat(math32.Sqrt(3)), 1e-6) {
		t.Fatalf("expected radius scaled by sqrt(3); got %v", b.Radius)
	}

	// Brighter albedo means less absorption and a shorter mean free path.
	b = &closure.Bssrdf{Radius: types.XYZ(1, 1, 1), Albedo: types.XYZ(0.1, 0.5, 0.9), IOR: 1.4, Method: closure.MethodRandomWalk}
	SetupRadius(b)
	if !(b.Radius[0] > b.Radius[1] && b.Radius[1] > b.Radius[2] && b.Radius[2] > 0) {
		t.Fatalf("expected radius to decrease with albedo; got %v", b.Radius)
	}
}

func TestAlphaPrimeInvertsDipole(t *testing.T) {
	fourThirdA := DiffuseReflectanceRatio(1.4)
	for _, rd := range []float32{0.05, 0.1, 0.2, 0.3} {
		alpha := AlphaPrime(rd, fourThirdA)
		if alpha <= 0 || alpha >= 1 {
			t.Fatalf("rd=%g: expected alpha' in (0, 1); got %g", rd, alpha)
		}
		if got := dipoleRd(alpha, fourThirdA); !approx(got, rd, 1e-2) {
			t.Fatalf("rd=%g: expected dipole reflectance to round trip; got %g (alpha'=%g)", rd, got, alpha)
		}
	}

	if v := AlphaPrime(0, fourThirdA); v != 0 {
		t.Fatalf("expected alpha'(0) = 0; got %g", v)
	}
	if v := AlphaPrime(0.999, fourThirdA); v != 0.999999 {
		t.Fatalf("expected alpha' to saturate; got %g", v)
	}
}

func TestSetupFromMaterial(t *testing.T) {
	m := material.Default("test")
	m.Method = closure.MethodBurley
	m.Color = types.XYZ(0.5, 0.5, 0.5)
	m.Radius = types.XYZ(1, 1, 1)
	m.Scale = 2

	sd := newShaderData(closure.MaxClosures)
	flag := SetupFromMaterial(sd, m, 0.5)
	if flag != closure.SDBssrdf {
		t.Fatalf("expected bssrdf flag; got %s", flag)
	}
	if sd.Flag != flag {
		t.Fatalf("expected shader data flag to be updated; got %s", sd.Flag)
	}

	b, ok := Find(sd)
	if !ok {
		t.Fatal("expected to find a bssrdf closure")
	}
	if b.Weight != types.Splat(0.25) {
		t.Fatalf("expected weight color*mix; got %v", b.Weight)
	}
	if b.Albedo != m.Color {
		t.Fatalf("expected albedo to match color; got %v", b.Albedo)
	}
	if !types.ApproxEqual(b.Radius, types.Splat(2*burleyRadiusScale), 1e-6) {
		t.Fatalf("expected scaled burley radius; got %v", b.Radius)
	}
}

func TestSetupFromMaterialSkinDefaultIOR(t *testing.T) {
	m := material.Default("skin")
	m.Method = closure.MethodRandomWalkSkin
	m.IOR = 0
	if err := m.Validate(); err != nil {
		t.Fatalf("expected skin material without an IOR to be valid; got %v", err)
	}

	sd := newShaderData(closure.MaxClosures)
	SetupFromMaterial(sd, m, 1)

	b, ok := Find(sd)
	if !ok {
		t.Fatal("expected to find a bssrdf closure")
	}
	if b.IOR != material.DefaultIOR {
		t.Fatalf("expected IOR to default to %g; got %g", material.DefaultIOR, b.IOR)
	}
}

func TestSetupFromMaterialArenaLimits(t *testing.T) {
	m := material.Default("thin")
	m.Radius = types.XYZ(1e-9, 1, 1)
	m.Scale = 1

	// No room at all.
	sd := newShaderData(0)
	if flag := SetupFromMaterial(sd, m, 1); flag != 0 {
		t.Fatalf("expected no flags from a full arena; got %s", flag)
	}
	if sd.Closures.Len() != 0 {
		t.Fatalf("expected no closures; got %d", sd.Closures.Len())
	}

	// Room for the bssrdf only; the diffuse fallback is dropped.
	sd = newShaderData(1)
	if flag := SetupFromMaterial(sd, m, 1); flag != closure.SDBssrdf {
		t.Fatalf("expected only the bssrdf flag; got %s", flag)
	}
	if sd.Closures.Len() != 1 {
		t.Fatalf("expected a single closure; got %d", sd.Closures.Len())
	}

	// Negligible weight.
	sd = newShaderData(closure.MaxClosures)
	if flag := SetupFromMaterial(sd, m, 0); flag != 0 {
		t.Fatalf("expected zero mix weight to emit nothing; got %s", flag)
	}
}
