package cmd

import (
	"bytes"
	"fmt"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/log"
	"github.com/UPBGE/upbge-sub036/tracer"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Flags describing the shading point.
var ShadingFlags = []cli.Flag{
	cli.Float64Flag{
		Name:  "weight, w",
		Value: 1.0,
		Usage: "mix weight applied to the material closures",
	},
	cli.IntFlag{
		Name:  "arena",
		Value: closure.MaxClosures,
		Usage: "closure arena capacity",
	},
	cli.Float64Flag{
		Name:  "angle",
		Usage: "angle in degrees between the view direction and the surface normal",
	},
}

// Build a job for a shading point at the origin of a horizontal surface.
func jobFromFlags(ctx *cli.Context) (*tracer.Job, error) {
	m, err := materialFromFlags(ctx)
	if err != nil {
		return nil, err
	}

	N := types.XYZ(0, 0, 1)
	return &tracer.Job{
		N:             N,
		I:             viewDirection(N, float32(ctx.Float64("angle"))),
		Material:      m,
		MixWeight:     float32(ctx.Float64("weight")),
		ArenaCapacity: ctx.Int("arena"),
	}, nil
}

// Tilt the normal by angle degrees around the X axis.
func viewDirection(N types.Vec3, angle float32) types.Vec3 {
	q := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), angle*math32.Pi/180.0)
	return q.Rotate(N).Normalize()
}

// Emit the closures of a material at a single shading point and display them.
func Setup(ctx *cli.Context) error {
	setupLogging(ctx)

	job, err := jobFromFlags(ctx)
	if err != nil {
		return err
	}
	if job.ArenaCapacity < 0 {
		return tracer.ErrInvalidArena
	}

	sd := job.Shade()
	displayClosures(job, sd)

	if log.Enabled(log.Debug) {
		if radius, ok := job.SampledRadius(); ok {
			logger.Debugf("sampled radius %s", formatVec3(radius))
		} else {
			logger.Debug("no subsurface closure survived setup")
		}
	}
	return nil
}

func displayClosures(job *tracer.Job, sd *closure.ShaderData) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Closure", "Weight", "Sample weight", "Details"})
	sd.Closures.Each(func(idx closure.Index, c closure.Closure) {
		base := c.Common()
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			c.Kind().String(),
			formatVec3(base.Weight),
			fmt.Sprintf("%.5f", base.SampleWeight),
			closureDetails(c),
		})
	})
	table.SetFooter([]string{"", "", "", fmt.Sprintf("%.5f", sd.TotalSampleWeight()), "flags: " + sd.Flag.String()})
	table.Render()

	logger.Noticef(
		"closures for material %q (arena %d/%d, %d free, I = %s)\n%s",
		job.Material.Name, sd.Closures.Len(), job.ArenaCapacity, sd.Closures.Left(), formatVec3(sd.I), buf.String(),
	)
}

func closureDetails(c closure.Closure) string {
	switch t := c.(type) {
	case *closure.Bssrdf:
		return fmt.Sprintf("method %s, radius %s, albedo %s, ior %.3f, anisotropy %.2f", t.Method, formatVec3(t.Radius), formatVec3(t.Albedo), t.IOR, t.Anisotropy)
	case *closure.PrincipledDiffuse:
		return fmt.Sprintf("components %s, roughness %.3f", t.Components, t.Roughness)
	}
	return ""
}

func formatVec3(v types.Vec3) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v[0], v[1], v[2])
}
