package cmd

import (
	"github.com/achilleasa/rtpreview/config"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/urfave/cli"
)

// Load the settings file, if one is specified, and apply flag overrides.
func loadSettings(ctx *cli.Context) (config.Settings, error) {
	s := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if s, err = config.Load(path); err != nil {
			return s, err
		}
	}

	s = applyFlagOverrides(ctx, s)
	return s, s.Validate()
}

// Replace settings with explicitly set flag values.
func applyFlagOverrides(ctx *cli.Context, s config.Settings) config.Settings {
	if ctx.IsSet("opaque-bounces") {
		s.OpaqueBounces = bounceFlag(ctx, "opaque-bounces")
	}
	if ctx.IsSet("transparent-bounces") {
		s.TransparentBounces = bounceFlag(ctx, "transparent-bounces")
	}
	if ctx.IsSet("env") {
		s.Environment = ctx.String("env")
	}
	if ctx.IsSet("program") {
		s.Program = ctx.String("program")
	}
	if ctx.IsSet("exposure") {
		s.Exposure = float32(ctx.Float64("exposure"))
	}
	return s
}

// Read a bounce limit flag clamped to [MinBounces, MaxBounces]. The value
// is clamped before the unsigned conversion so negative values map to the
// minimum.
func bounceFlag(ctx *cli.Context, name string) uint32 {
	v := ctx.Int(name)
	if v < int(renderer.MinBounces) {
		return renderer.MinBounces
	}
	if v > int(renderer.MaxBounces) {
		return renderer.MaxBounces
	}
	return uint32(v)
}
