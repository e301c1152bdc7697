package software

import "errors"

var (
	ErrInvalidHandle      = errors.New("software backend: invalid resource handle")
	ErrUnsupportedImage   = errors.New("software backend: unsupported image descriptor")
	ErrOutOfMemory        = errors.New("software backend: image allocation exceeds memory budget")
	ErrForeignProgram     = errors.New("software backend: program was not created by the software backend")
	ErrUnknownProgram     = errors.New("software backend: unknown program")
	ErrUnknownPass        = errors.New("software backend: unknown execution pass")
	ErrUnknownEntryPoint  = errors.New("software backend: unknown entry point")
	ErrUnsupportedParam   = errors.New("software backend: unsupported parameter type")
	ErrInvalidDispatch    = errors.New("software backend: invalid dispatch dimensions")
	ErrCameraNotSpecified = errors.New("software backend: dispatch requires a camera")
)
