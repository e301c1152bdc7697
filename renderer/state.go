package renderer

import "fmt"

// The controller state.
type State uint8

const (
	Uninitialized State = iota

	// Enabled with an empty accumulation buffer.
	Ready

	// At least one sample has been accumulated.
	Rendering

	// Resources released; Enable must be called before the next tick.
	Disabled
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// The reason for falling back to passing frames through.
type DegradedReason uint8

const (
	NotDegraded DegradedReason = iota

	// The backend reports no hardware ray tracing support.
	NoHardwareSupport

	// No ray generation program is configured.
	NoProgram
)

func (r DegradedReason) String() string {
	switch r {
	case NotDegraded:
		return "none"
	case NoHardwareSupport:
		return "ray tracing is not supported by this device or graphics API"
	case NoProgram:
		return "no ray generation program configured"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}
