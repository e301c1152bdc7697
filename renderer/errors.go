package renderer

import "errors"

var (
	ErrNotEnabled         = errors.New("renderer: controller is not enabled")
	ErrCameraNotDefined   = errors.New("renderer: no camera defined")
	ErrSceneNotDefined    = errors.New("renderer: no scene defined")
	ErrSurfaceNotDefined  = errors.New("renderer: no display surface defined")
	ErrResourceAllocation = errors.New("renderer: backend resource allocation failed")
	ErrRenderPass         = errors.New("renderer: render pass failed")
)
