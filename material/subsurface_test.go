package material

import (
	"testing"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	rough := float32(0.5)
	tooRough := float32(1.5)

	valid := []Subsurface{
		Default("default"),
		{Name: "skin", Method: closure.MethodRandomWalkSkin, Color: types.Splat(0.5), Radius: types.XYZ(1, 0.2, 0.1), Scale: 0.05, IOR: 1.4, Roughness: &rough},
		{Name: "disabled", Method: closure.MethodBurley, Color: types.Splat(0.5), Radius: types.Vec3{}, Scale: 1, IOR: 1.4},
		{Name: "skin-default-ior", Method: closure.MethodRandomWalkSkin, Color: types.Splat(0.5), Radius: types.Splat(1), Scale: 0.05},
	}
	for _, m := range valid {
		assert.NoError(t, m.Validate(), "material %q", m.Name)
	}

	type spec struct {
		mutate func(*Subsurface)
		param  string
	}
	specs := []spec{
		{func(m *Subsurface) { m.Method = 0 }, ParamMethod},
		{func(m *Subsurface) { m.Color = types.XYZ(1.0, 0.5, 0.5) }, ParamColor},
		{func(m *Subsurface) { m.Color = types.XYZ(-0.1, 0.5, 0.5) }, ParamColor},
		{func(m *Subsurface) { m.Radius = types.XYZ(1, -1, 1) }, ParamRadius},
		{func(m *Subsurface) { m.Scale = -1 }, ParamScale},
		{func(m *Subsurface) { m.IOR = 0 }, ParamIOR},
		{func(m *Subsurface) { m.Method = closure.MethodRandomWalkSkin; m.IOR = -1 }, ParamIOR},
		{func(m *Subsurface) { m.IOR = math32.Inf(1) }, ParamIOR},
		{func(m *Subsurface) { m.IOR = math32.NaN() }, ParamIOR},
		{func(m *Subsurface) { m.Color = types.XYZ(math32.NaN(), 0.5, 0.5) }, ParamColor},
		{func(m *Subsurface) { m.Color = types.XYZ(0.5, math32.Inf(-1), 0.5) }, ParamColor},
		{func(m *Subsurface) { m.Radius = types.XYZ(math32.NaN(), 1, 1) }, ParamRadius},
		{func(m *Subsurface) { m.Radius = types.XYZ(1, math32.Inf(1), 1) }, ParamRadius},
		{func(m *Subsurface) { m.Scale = math32.NaN() }, ParamScale},
		{func(m *Subsurface) { m.Scale = math32.Inf(1) }, ParamScale},
		{func(m *Subsurface) { m.Radius = types.XYZ(10, 1, 1); m.Scale = 1e38 }, ParamScale},
		{func(m *Subsurface) { nan := math32.NaN(); m.Roughness = &nan }, ParamRoughness},
		{func(m *Subsurface) { m.Anisotropy = math32.NaN() }, ParamAnisotropy},
		{func(m *Subsurface) { m.Roughness = &tooRough }, ParamRoughness},
		{func(m *Subsurface) { m.Anisotropy = 2 }, ParamAnisotropy},
	}
	for index, s := range specs {
		m := Default("broken")
		s.mutate(&m)
		err := m.Validate()
		if assert.Error(t, err, "spec %d", index) {
			assert.Contains(t, err.Error(), s.param, "spec %d", index)
		}
	}
}

func TestScaledRadius(t *testing.T) {
	m := Default("m")
	m.Radius = types.XYZ(2, -1, 4)
	m.Scale = 0.5

	assert.Equal(t, types.XYZ(1, 0, 2), m.ScaledRadius())
}

func TestIORLookup(t *testing.T) {
	ior, err := IOR("Skin")
	require.NoError(t, err)
	assert.Equal(t, float32(1.4), ior)

	_, err = IOR("unobtainium")
	assert.Error(t, err)
}
