// Package capture implements the lead capture form shared by every section of
// the landing page.
package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zma-auto/taxi-landing/internal/leads"
)

// State is the lifecycle of a capture form.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

// Gateway delivers a lead to the CRM and reports the transport outcome.
type Gateway interface {
	SubmitLead(ctx context.Context, rec leads.Record) bool
}

// Observer is notified on every state transition.
type Observer interface {
	ObserveTransition(form, state string)
}

// Form owns the input state of one on-page form. It is safe for concurrent
// use; a submission in flight makes every other submit inert.
type Form struct {
	schema   Schema
	gateway  Gateway
	observer Observer

	mu     sync.Mutex
	state  State
	open   bool
	values map[string]string
}

// NewForm builds an idle form for schema.
func NewForm(schema Schema, gateway Gateway, observer Observer) *Form {
	f := &Form{
		schema:   schema,
		gateway:  gateway,
		observer: observer,
		state:    StateIdle,
	}
	f.values = f.initialValues()
	return f
}

func (f *Form) initialValues() map[string]string {
	values := make(map[string]string, len(f.schema.Fields))
	for _, field := range f.schema.Fields {
		values[field.Name] = field.Default
	}
	return values
}

// Schema returns the form's configuration.
func (f *Form) Schema() Schema {
	return f.schema
}

// SetField updates one in-progress value.
func (f *Form) SetField(name, value string) error {
	field, ok := f.schema.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !field.allows(value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, value)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return ErrNotIdle
	}
	f.values[name] = value
	return nil
}

// SetFields applies several values at once. A rejected value leaves every
// field unchanged.
func (f *Form) SetFields(values map[string]string) error {
	for name, value := range values {
		field, ok := f.schema.field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if !field.allows(value) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, value)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return ErrNotIdle
	}
	for name, value := range values {
		f.values[name] = value
	}
	return nil
}

// Open shows a modal form.
func (f *Form) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
}

// Close hides the container. An idle form keeps what the visitor typed; a
// submitted form is dismissed.
func (f *Form) Close() {
	f.mu.Lock()
	submitted := f.state == StateSubmitted
	f.open = false
	f.mu.Unlock()

	if submitted {
		_ = f.Dismiss()
	}
}

// Submit sends the form to the CRM. It is inert while a field is empty or
// while the form is not idle. Once started the form always ends up
// submitted, whatever the gateway reports; the returned bool is the gateway
// result for diagnostics.
func (f *Form) Submit(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return false, ErrNotIdle
	}
	if missing := f.missingLocked(); len(missing) > 0 {
		f.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	rec := f.recordLocked()
	if err := rec.Validate(); err != nil {
		f.mu.Unlock()
		return false, fmt.Errorf("%w: %w", ErrIncomplete, err)
	}
	f.state = StateSubmitting
	f.mu.Unlock()
	f.notify(StateSubmitting)

	// An in-flight submission cannot be cancelled by the caller.
	delivered := f.gateway.SubmitLead(context.WithoutCancel(ctx), rec)

	f.mu.Lock()
	f.state = StateSubmitted
	f.mu.Unlock()
	f.notify(StateSubmitted)

	return delivered, nil
}

// Dismiss clears every typed field, restores select defaults and returns the
// form to idle with its container closed. It is refused while a submission
// is in flight.
func (f *Form) Dismiss() error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrNotIdle
	}
	f.values = f.initialValues()
	f.state = StateIdle
	f.open = false
	f.mu.Unlock()
	f.notify(StateIdle)
	return nil
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot is what the renderer needs to draw the form.
type Snapshot struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Source         string            `json:"source"`
	State          State             `json:"state"`
	Open           bool              `json:"open"`
	Modal          bool              `json:"modal"`
	Values         map[string]string `json:"values"`
	Missing        []string          `json:"missing"`
	Acknowledgment string            `json:"acknowledgment,omitempty"`
}

// Busy reports whether the submit control must be disabled.
func (s Snapshot) Busy() bool {
	return s.State == StateSubmitting
}

// Snapshot copies the current form state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := make(map[string]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	snap := Snapshot{
		ID:      f.schema.ID,
		Title:   f.schema.Title,
		Source:  f.schema.Source,
		State:   f.state,
		Open:    f.open,
		Modal:   f.schema.Modal,
		Values:  values,
		Missing: f.missingLocked(),
	}
	if f.state == StateSubmitted {
		snap.Acknowledgment = f.schema.Acknowledgment
	}
	return snap
}

func (f *Form) missingLocked() []string {
	missing := []string{}
	for _, field := range f.schema.Fields {
		if strings.TrimSpace(f.values[field.Name]) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

func (f *Form) recordLocked() leads.Record {
	rec := leads.Record{Source: f.schema.Source}
	for _, field := range f.schema.Fields {
		value := f.values[field.Name]
		switch field.Slot {
		case SlotName:
			rec.Name = value
		case SlotPhone:
			rec.Phone = value
		case SlotTelegram:
			rec.Telegram = value
		}
	}
	return rec
}

func (f *Form) notify(state State) {
	if f.observer != nil {
		f.observer.ObserveTransition(f.schema.ID, string(state))
	}
}
