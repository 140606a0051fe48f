package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/material"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/urfave/cli"
)

// Flags shared by the commands that evaluate a subsurface material.
var MaterialFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "preset, p",
		Usage: "start from the named material preset",
	},
	cli.StringFlag{
		Name:  "presets",
		Usage: "load presets from a YAML file or URL instead of the built-in ones",
	},
	cli.StringFlag{
		Name:  "method, m",
		Usage: "subsurface method (burley, randomWalk, randomWalkFixedRadius, randomWalkSkin)",
	},
	cli.StringFlag{
		Name:  "color",
		Usage: "surface color as r,g,b or a single value",
	},
	cli.StringFlag{
		Name:  "radius, r",
		Usage: "per-channel scattering radius as r,g,b or a single value",
	},
	cli.Float64Flag{
		Name:  "scale",
		Usage: "radius scale",
	},
	cli.StringFlag{
		Name:  "ior",
		Usage: "index of refraction; either a number or a known medium name",
	},
	cli.Float64Flag{
		Name:  "roughness",
		Usage: "enable the retro-reflection lobe with this roughness",
	},
	cli.Float64Flag{
		Name:  "anisotropy",
		Usage: "scattering anisotropy",
	},
}

// Load the presets selected by the --presets flag.
func loadPresets(ctx *cli.Context) (material.Presets, error) {
	if path := ctx.String("presets"); path != "" {
		return material.LoadPresets(context.Background(), path)
	}
	return material.BuiltinPresets(), nil
}

// Assemble a material from the preset and material flags. Explicitly set
// flags override the preset values.
func materialFromFlags(ctx *cli.Context) (material.Subsurface, error) {
	m := material.Default("cli")

	if name := ctx.String("preset"); name != "" {
		presets, err := loadPresets(ctx)
		if err != nil {
			return m, err
		}
		var found bool
		if m, found = presets.Find(name); !found {
			return m, fmt.Errorf("unknown material preset %q", name)
		}
	}

	var err error
	if ctx.IsSet("method") {
		method, ok := closure.MethodFromName(ctx.String("method"))
		if !ok {
			return m, fmt.Errorf("unknown subsurface method %q", ctx.String("method"))
		}
		m.Method = method
	}
	if ctx.IsSet("color") {
		if m.Color, err = parseVec3(ctx.String("color")); err != nil {
			return m, fmt.Errorf("invalid value for %q: %v", material.ParamColor, err)
		}
	}
	if ctx.IsSet("radius") {
		if m.Radius, err = parseVec3(ctx.String("radius")); err != nil {
			return m, fmt.Errorf("invalid value for %q: %v", material.ParamRadius, err)
		}
	}
	if ctx.IsSet("scale") {
		m.Scale = float32(ctx.Float64("scale"))
	}
	if ctx.IsSet("ior") {
		if m.IOR, err = parseIOR(ctx.String("ior")); err != nil {
			return m, err
		}
	}
	if ctx.IsSet("roughness") {
		roughness := float32(ctx.Float64("roughness"))
		m.Roughness = &roughness
	}
	if ctx.IsSet("anisotropy") {
		m.Anisotropy = float32(ctx.Float64("anisotropy"))
	}

	return m, m.Validate()
}

// Parse a spectrum given either as a single value or as 3 comma separated
// components.
func parseVec3(value string) (types.Vec3, error) {
	tokens := strings.Split(value, ",")
	if len(tokens) != 1 && len(tokens) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 1 or 3 components; got %d", len(tokens))
	}

	var out types.Vec3
	for i, token := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return types.Vec3{}, err
		}
		out[i] = float32(v)
	}

	if len(tokens) == 1 {
		return types.Splat(out[0]), nil
	}
	return out, nil
}

func parseIOR(value string) (float32, error) {
	if v, err := strconv.ParseFloat(value, 32); err == nil {
		return float32(v), nil
	}
	return material.IOR(value)
}
