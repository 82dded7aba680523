package capture

import "fmt"

// Set holds one independent form per schema for a single visitor.
type Set struct {
	order []string
	forms map[string]*Form
}

// NewSet instantiates a form for each schema.
func NewSet(schemas []Schema, gateway Gateway, observer Observer) *Set {
	s := &Set{forms: make(map[string]*Form, len(schemas))}
	for _, schema := range schemas {
		s.order = append(s.order, schema.ID)
		s.forms[schema.ID] = NewForm(schema, gateway, observer)
	}
	return s
}

// Form looks up a form by id.
func (s *Set) Form(id string) (*Form, error) {
	f, ok := s.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, id)
	}
	return f, nil
}

// Snapshots returns every form's snapshot keyed by id.
func (s *Set) Snapshots() map[string]Snapshot {
	out := make(map[string]Snapshot, len(s.forms))
	for _, id := range s.order {
		out[id] = s.forms[id].Snapshot()
	}
	return out
}
