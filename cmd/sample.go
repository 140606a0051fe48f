package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/film"
	"github.com/UPBGE/upbge-sub036/renderer"
	"github.com/UPBGE/upbge-sub036/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Estimate the subsurface response of a shading point by sampling it on all
// selected devices.
func Sample(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		Samples:            uint32(ctx.Int("samples")),
		Batches:            uint32(ctx.Int("batches")),
		Seed:               uint64(ctx.Int64("seed")),
		HistogramBins:      ctx.Int("bins"),
		BlackListedDevices: ctx.StringSlice("blacklist"),
	}

	devices, err := devicesFromFlags(ctx)
	if err != nil {
		return err
	}

	job, err := jobFromFlags(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(job, tracer.NewPerfectScheduler(), devices, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("tracing %d samples of material %q", opts.Samples, job.Material.Name)
	if err = r.Render(renderCtx); err != nil {
		return err
	}

	stats := r.Stats()
	displayFrameStats(stats)
	displayEstimate(stats.Film)
	if stats.Histogram.Expected != nil {
		displayHistogram(stats.Histogram, stats.Film.Bins, job.Film.Histogram())
	}
	return nil
}

// Select the devices matching the --device and --name flags.
func devicesFromFlags(ctx *cli.Context) ([]device.Backend, error) {
	typeMask, err := device.ParseType(ctx.String("device"))
	if err != nil {
		return nil, err
	}

	devices := device.SelectDevices(typeMask, ctx.String("name"))
	if len(devices) == 0 {
		return nil, fmt.Errorf("no %s device matches %q", typeMask, ctx.String("name"))
	}
	return devices, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block size", "% of batch", "Block time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockSize),
			fmt.Sprintf("%02.1f %%", stat.BatchPercent),
			stat.BlockTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("batch statistics\n%s", buf.String())
}

func displayEstimate(snapshot film.Snapshot) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "R", "G", "B"})
	for _, pass := range film.Passes {
		mean := snapshot.Mean(pass)
		table.Append([]string{
			pass.String(),
			fmt.Sprintf("%.5f", mean[0]),
			fmt.Sprintf("%.5f", mean[1]),
			fmt.Sprintf("%.5f", mean[2]),
		})
	}
	table.Append([]string{
		"probes",
		fmt.Sprintf("%d", snapshot.Channels[0]),
		fmt.Sprintf("%d", snapshot.Channels[1]),
		fmt.Sprintf("%d", snapshot.Channels[2]),
	})
	table.SetFooter([]string{"", "samples", fmt.Sprintf("%d", snapshot.Samples), fmt.Sprintf("%d misses", snapshot.Misses)})

	table.Render()
	logger.Noticef("per-sample estimate (max probed radius %g)\n%s", snapshot.MaxRadius, buf.String())
}

func displayHistogram(h renderer.HistogramStats, observed []uint32, bins *film.Histogram) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Radius", "Observed", "Expected"})
	for bin := range observed {
		lo, hi := bins.BinRange(bin)
		table.Append([]string{
			fmt.Sprintf("[%.4f, %.4f)", lo, hi),
			fmt.Sprintf("%d", observed[bin]),
			fmt.Sprintf("%.1f", h.Expected[bin]),
		})
	}
	verdict := "consistent"
	if !h.Consistent() {
		verdict = "INCONSISTENT"
	}
	table.SetFooter([]string{
		verdict,
		fmt.Sprintf("chi2 %.2f", h.ChiSquared),
		fmt.Sprintf("critical %.2f (%d dof)", h.Critical, h.DegreesOfFreedom),
	})

	table.Render()
	logger.Noticef("sampled radius distribution\n%s", buf.String())
}
