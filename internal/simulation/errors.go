package simulation

import "errors"

// Boundary errors. The engine itself never fails; these are raised by the
// runner before Simulate is invoked.
var (
	// ErrMissingRequiredInput is returned when tariffs, project or technology are absent.
	ErrMissingRequiredInput = errors.New("missing required input")

	// ErrInvalidInput is returned for negative or non-finite numeric inputs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownTechnology is returned when the technology does not exist.
	ErrUnknownTechnology = errors.New("unknown technology")

	// ErrUnknownProject is returned when the project does not exist.
	ErrUnknownProject = errors.New("unknown project")

	// ErrNotApproved is returned when the technology has not passed the approval gate.
	ErrNotApproved = errors.New("technology not approved")

	// ErrUnauthorized is returned when no principal is attached to the call.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the principal may not act on the project.
	ErrForbidden = errors.New("forbidden")
)
