package main

import (
	"os"

	"github.com/UPBGE/upbge-sub036/cmd"
	"github.com/UPBGE/upbge-sub036/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "sss"
	app.Usage = "sample and inspect subsurface scattering profiles"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "profile",
			Usage: "tabulate the radial scattering profile",
			Description: `
Evaluate the truncated Burley profile, its PDF and CDF for a single channel
with mean free path d at evenly spaced radii up to the truncation radius.`,
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "d",
					Value: 1.0,
					Usage: "mean free path",
				},
				cli.IntFlag{
					Name:  "steps, n",
					Value: 16,
					Usage: "number of steps",
				},
				cli.BoolFlag{
					Name:  "root-find",
					Usage: "also display the CDF inverter convergence",
				},
			},
			Action: cmd.Profile,
		},
		{
			Name:  "setup",
			Usage: "display the closures emitted by a subsurface material",
			Description: `
Run closure setup for a subsurface material at a single shading point and
list the closures it produces, including any diffuse fallback and
retro-reflection lobes.`,
			Flags:  append(append([]cli.Flag{}, cmd.MaterialFlags...), cmd.ShadingFlags...),
			Action: cmd.Setup,
		},
		{
			Name:  "sample",
			Usage: "estimate the subsurface response of a shading point",
			Description: `
Sample the closures of a subsurface material on all selected devices and
report the per-pass estimates along with a goodness of fit test of the
sampled radii against the analytic profile.`,
			Flags: append(append(append([]cli.Flag{}, cmd.MaterialFlags...), cmd.ShadingFlags...),
				cli.IntFlag{
					Name:  "samples, s",
					Value: 100000,
					Usage: "number of samples",
				},
				cli.IntFlag{
					Name:  "batches",
					Value: 4,
					Usage: "number of batches used for load balancing",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed",
				},
				cli.IntFlag{
					Name:  "bins",
					Value: 32,
					Usage: "number of radius histogram bins",
				},
				cli.StringFlag{
					Name:  "device, d",
					Value: "all",
					Usage: "device type to use (cpu, serial, all)",
				},
				cli.StringFlag{
					Name:  "name",
					Usage: "only use devices whose name contains this value",
				},
				cli.StringSliceFlag{
					Name:  "blacklist, b",
					Value: &cli.StringSlice{},
					Usage: "blacklist devices whose names contain this value",
				},
			),
			Action: cmd.Sample,
		},
		{
			Name:  "presets",
			Usage: "list material presets",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "presets",
					Usage: "load presets from a YAML file or URL instead of the built-in ones",
				},
			},
			Action: cmd.ListPresets,
		},
		{
			Name:   "list-devices",
			Usage:  "list available sampling devices",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("sss").Errorf("error: %s", err.Error())
		os.Exit(1)
	}
}
