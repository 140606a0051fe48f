package cmd

import (
	"github.com/UPBGE/upbge-sub036/device"
	"github.com/urfave/cli"
)

// List the sampling devices available on this host.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	logger.Noticef("System provides the following devices:\n\n%s", device.GetPlatformInfo())
	return nil
}
