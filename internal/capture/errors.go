package capture

import "errors"

var (
	// ErrIncomplete is returned by Submit while a required field is empty.
	ErrIncomplete = errors.New("capture: required fields missing")

	// ErrNotIdle is returned when an action needs an idle form.
	ErrNotIdle = errors.New("capture: form is not idle")

	// ErrUnknownField is returned for field names outside the schema.
	ErrUnknownField = errors.New("capture: unknown field")

	// ErrInvalidOption is returned when a selection is not one of the options.
	ErrInvalidOption = errors.New("capture: invalid option")

	// ErrUnknownForm is returned when a set has no form with the given id.
	ErrUnknownForm = errors.New("capture: unknown form")
)
