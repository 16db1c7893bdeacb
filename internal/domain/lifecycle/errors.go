package lifecycle

import "errors"

var (
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrBusy indicates a send-message or generate-code operation is outstanding.
	ErrBusy = errors.New("another generation request is in progress")
	// ErrInvalidPhase indicates the operation is not valid in the current phase.
	ErrInvalidPhase = errors.New("operation not valid in current phase")
	// ErrMissingRequirements indicates code generation without a requirements document.
	ErrMissingRequirements = errors.New("requirements document is empty")
	// ErrInvalidInput indicates invalid operation input.
	ErrInvalidInput = errors.New("invalid input")
)
