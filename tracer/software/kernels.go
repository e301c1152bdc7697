package software

import "github.com/achilleasa/rtpreview/types"

// Names shared by the built-in programs.
const (
	PathTracingPass  = "PathTracing"
	RayGenEntryPoint = "MainRayGenShader"

	EnvPreviewProgram       = "envpreview"
	ConvergenceDebugProgram = "convergence-debug"
)

func init() {
	Register(EnvPreviewProgram, func() *Program {
		return NewProgram(EnvPreviewProgram, "progressive environment map preview with per-sample pixel jitter").
			AddKernel(PathTracingPass, RayGenEntryPoint, envPreviewKernel)
	})
	Register(ConvergenceDebugProgram, func() *Program {
		return NewProgram(ConvergenceDebugProgram, "writes the convergence step to rgb and the instance count to alpha").
			AddKernel(PathTracingPass, RayGenEntryPoint, convergenceDebugKernel)
	})
}

// Generate a jittered primary ray for the invocation pixel and add the
// environment radiance along it to the running mean stored in g_Radiance.
// A convergence step of 0 overwrites whatever the image contained.
func envPreviewKernel(inv *Invocation) {
	out := inv.Target("g_Radiance")
	if out == nil {
		return
	}

	zoom := inv.Float("g_Zoom")
	aspect := inv.Float("g_AspectRatio")
	step := inv.Int("g_ConvergenceStep")

	px := (float32(inv.X) + inv.Rand()) / float32(inv.Width)
	py := (float32(inv.Y) + inv.Rand()) / float32(inv.Height)
	camDir := types.XYZ((2*px-1)*aspect*zoom, (1-2*py)*zoom, -1)
	dir := inv.Camera.CameraToWorld().MulDir(camDir).Normalize()

	var radiance types.Vec3
	if env := inv.Environment("g_EnvTex"); env != nil {
		radiance = env.Sample(dir)
	}

	if step <= 0 {
		out.Set(inv.X, inv.Y, radiance.Vec4(1))
		return
	}

	prev := out.At(inv.X, inv.Y).Vec3()
	weight := 1.0 / float32(step+1)
	out.Set(inv.X, inv.Y, prev.Add(radiance.Sub(prev).Mul(weight)).Vec4(1))
}

func convergenceDebugKernel(inv *Invocation) {
	out := inv.Target("g_Radiance")
	if out == nil {
		return
	}
	step := float32(inv.Int("g_ConvergenceStep"))
	out.Set(inv.X, inv.Y, types.Vec4{step, step, step, float32(inv.Instances("g_AccelStruct"))})
}
