package cmd

import (
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/types"
	"github.com/urfave/cli"
)

// Build the preview scene and camera from the command flags.
func setupScene(ctx *cli.Context) (*scene.Scene, error) {
	camera := scene.NewCamera(float32(ctx.Float64("fov")))
	camera.Position = types.Vec3{0, 1, 5}
	camera.LookAt = types.Vec3{0, 0, 0}
	camera.Update()

	sc := scene.NewScene(camera)
	for _, obj := range []*scene.Object{
		{Name: "ground", Layer: 0, Mode: scene.Static},
		{Name: "sphere", Layer: 1, Mode: scene.Dynamic},
		{Name: "area-light", Layer: 2, Mode: scene.Static},
	} {
		if err := sc.AddObject(obj); err != nil {
			return nil, err
		}
	}

	logger.Infof("scene contains %d objects", len(sc.Objects))
	return sc, nil
}
