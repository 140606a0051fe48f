package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the available material presets.
func ListPresets(ctx *cli.Context) error {
	setupLogging(ctx)

	presets, err := loadPresets(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Name", "Method", "Color", "Radius", "Scale", "IOR", "Roughness", "Anisotropy"})
	for _, m := range presets {
		roughness := "-"
		if m.Roughness != nil {
			roughness = fmt.Sprintf("%.3f", *m.Roughness)
		}
		table.Append([]string{
			m.Name,
			m.Method.String(),
			formatVec3(m.Color),
			formatVec3(m.Radius),
			fmt.Sprintf("%g", m.Scale),
			fmt.Sprintf("%.3f", m.IOR),
			roughness,
			fmt.Sprintf("%.2f", m.Anisotropy),
		})
	}
	table.Render()
	logger.Noticef("%d material presets\n%s", len(presets), buf.String())
	return nil
}
