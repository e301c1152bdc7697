package cmd

import (
	"bytes"
	"strings"

	"github.com/achilleasa/rtpreview/tracer/software"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the ray generation programs registered with the software backend.
func ListPrograms(ctx *cli.Context) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Program", "Passes", "Description"})

	programs := software.Programs()
	for _, info := range programs {
		table.Append([]string{info.Name, strings.Join(info.Passes, ", "), info.Description})
	}
	table.Render()

	logger.Noticef("%d program(s) available\n%s", len(programs), buf.String())
	return nil
}
