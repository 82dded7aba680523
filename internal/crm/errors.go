package crm

import "errors"

var (
	// ErrTransport wraps every failure that kept the webhook call from completing.
	ErrTransport = errors.New("crm: transport failure")

	// ErrQueueUnavailable is returned when the retry queue has no backing store.
	ErrQueueUnavailable = errors.New("crm: retry queue unavailable")
)
