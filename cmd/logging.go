package cmd

import (
	"github.com/achilleasa/rtpreview/log"
	"github.com/urfave/cli"
)

var logger = log.New("rtpreview")

// Apply the settings file log level; the verbosity flags take precedence.
func setupLogging(ctx *cli.Context, level log.Level) {
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
