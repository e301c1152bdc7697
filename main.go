package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/rtpreview/cmd"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/achilleasa/rtpreview/tracer/software"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	defaults := renderer.DefaultOptions()
	sessionFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 800,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 600,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "opaque-bounces",
			Value: int(defaults.OpaqueBounces),
			Usage: fmt.Sprintf("max bounces for rays hitting opaque materials [%d, %d]", renderer.MinBounces, renderer.MaxBounces),
		},
		cli.IntFlag{
			Name:  "transparent-bounces",
			Value: int(defaults.TransparentBounces),
			Usage: fmt.Sprintf("max bounces for rays hitting transparent materials [%d, %d]", renderer.MinBounces, renderer.MaxBounces),
		},
		cli.StringFlag{
			Name:  "env, e",
			Usage: "environment map image (local path or http(s) url)",
		},
		cli.StringFlag{
			Name:  "program, p",
			Value: software.EnvPreviewProgram,
			Usage: "ray generation program; an empty value passes frames through",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: 45.0,
			Usage: "vertical field of view in degrees",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML settings file; explicitly set flags override its values",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of software backend workers; 0 uses all cpus",
		},
		cli.BoolFlag{
			Name:  "no-hw",
			Usage: "simulate a device without ray tracing support",
		},
	}

	app := cli.NewApp()
	app.Name = "rtpreview"
	app.Usage = "progressive ray traced scene preview"
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
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-programs",
			Usage:  "list available ray generation programs",
			Action: cmd.ListPrograms,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Run a number of progressive ticks against the software backend and write the
accumulated result to a png file.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "ticks, t",
							Value: 16,
							Usage: "number of progressive samples to accumulate",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, sessionFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Open a window that keeps refining the preview. Use the arrow keys to move the
camera, drag with the left mouse button to look around, press space to restart
accumulation and tab to toggle the frame time overlay. Changes to the settings
file are applied while the window is open.`,
					Flags:  sessionFlags,
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
