package cmd

import (
	"bytes"
	"fmt"

	"github.com/UPBGE/upbge-sub036/bssrdf"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Tabulate the radial profile of a single channel.
func Profile(ctx *cli.Context) error {
	setupLogging(ctx)

	d := float32(ctx.Float64("d"))
	steps := ctx.Int("steps")
	if !(d > 0) {
		return fmt.Errorf("profile parameter d must be > 0; got %f", d)
	}
	if steps < 1 {
		return fmt.Errorf("step count must be >= 1; got %d", steps)
	}

	rMax := bssrdf.Truncate * d
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"r", "r / d", "Eval", "PDF", "CDF"})
	for step := 0; step <= steps; step++ {
		r := rMax * float32(step) / float32(steps)
		table.Append([]string{
			fmt.Sprintf("%.5f", r),
			fmt.Sprintf("%.2f", r/d),
			fmt.Sprintf("%.6e", bssrdf.Eval(d, r)),
			fmt.Sprintf("%.6e", bssrdf.PDF(d, r)),
			fmt.Sprintf("%.6f", bssrdf.CDF(d, r)),
		})
	}
	table.Render()
	logger.Noticef("radial profile for d = %g (truncated at %g)\n%s", d, rMax, buf.String())

	if ctx.Bool("root-find") {
		displayRootFind(steps)
	}
	return nil
}

// Show the root finder behavior over evenly spaced values of the sampled
// CDF range [0, TruncateCDF].
func displayRootFind(steps int) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"xi", "r / d", "Iterations", "Residual"})
	for step := 0; step <= steps; step++ {
		xi := bssrdf.TruncateCDF * float32(step) / float32(steps)
		r, iterations, residual := bssrdf.RootFindStats(xi)
		table.Append([]string{
			fmt.Sprintf("%.4f", xi),
			fmt.Sprintf("%.6f", r),
			fmt.Sprintf("%d", iterations),
			fmt.Sprintf("%.3e", residual),
		})
	}
	table.Render()
	logger.Noticef("normalized CDF inversion\n%s", buf.String())
}
