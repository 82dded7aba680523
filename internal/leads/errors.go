package leads

import "errors"

var (
	// ErrMissingName is returned when the visitor left the name empty
	ErrMissingName = errors.New("name is required")

	// ErrMissingPhone is returned when the visitor left the phone empty
	ErrMissingPhone = errors.New("phone is required")

	// ErrMissingTelegram is returned when the telegram slot is empty
	ErrMissingTelegram = errors.New("telegram is required")
)
