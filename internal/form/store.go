// Package form holds the state of the lead capture form between user edits and
// submission.
package form

import (
	"fmt"
	"sync"

	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/models"
)

// Field names a LeadForm attribute. Values match the wire field names.
type Field string

const (
	FieldCourse      Field = "course"
	FieldFullName    Field = "fullName"
	FieldEmail       Field = "email"
	FieldCountryCode Field = "countryCode"
	FieldPhone       Field = "phone"
	FieldUseWhatsApp Field = "useWhatsApp"
	FieldAgreeTerms  Field = "agreeTerms"
)

// Fields lists every form field in display order
var Fields = []Field{
	FieldCourse,
	FieldFullName,
	FieldEmail,
	FieldCountryCode,
	FieldPhone,
	FieldUseWhatsApp,
	FieldAgreeTerms,
}

// Listener receives a snapshot of the form after every change
type Listener func(models.LeadForm)

// Store is the form state manager. It owns one LeadForm and a submitting flag.
// All methods are safe for concurrent use; each SetField is an atomic
// read-modify-write of a single attribute, so independent edits never clobber
// each other.
type Store struct {
	catalog *config.Catalog

	mu         sync.Mutex
	form       models.LeadForm
	submitting bool
	listeners  map[int]Listener
	nextID     int
}

// NewStore creates a store holding a blank form
func NewStore(catalog *config.Catalog) *Store {
	return &Store{
		catalog:   catalog,
		form:      models.NewLeadForm(catalog.DefaultCountryCode()),
		listeners: make(map[int]Listener),
	}
}

// Catalog returns the reference data the store was created with
func (s *Store) Catalog() *config.Catalog {
	return s.catalog
}

// Snapshot returns a copy of the current form
func (s *Store) Snapshot() models.LeadForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetField replaces one attribute of the form and leaves the others untouched.
// Text fields take a string and checkboxes take a bool. Select fields only
// accept catalog values: the country code must always name a listed dialing
// code and the course is either empty or a listed course.
func (s *Store) SetField(name Field, value interface{}) error {
	s.mu.Lock()
	next := s.form
	if err := s.apply(&next, name, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.form = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, next)
	return nil
}

func (s *Store) apply(f *models.LeadForm, name Field, value interface{}) error {
	switch name {
	case FieldCourse:
		v, err := asString(name, value)
		if err != nil {
			return err
		}
		if v != "" && !s.catalog.HasCourse(v) {
			return fmt.Errorf("%w: %q", models.ErrUnknownCourse, v)
		}
		f.Course = v
	case FieldFullName:
		v, err := asString(name, value)
		if err != nil {
			return err
		}
		f.FullName = v
	case FieldEmail:
		v, err := asString(name, value)
		if err != nil {
			return err
		}
		f.Email = v
	case FieldCountryCode:
		v, err := asString(name, value)
		if err != nil {
			return err
		}
		if !s.catalog.HasDialingCode(v) {
			return fmt.Errorf("%w: %q", models.ErrUnknownDialCode, v)
		}
		f.CountryCode = v
	case FieldPhone:
		v, err := asString(name, value)
		if err != nil {
			return err
		}
		f.Phone = v
	case FieldUseWhatsApp:
		v, err := asBool(name, value)
		if err != nil {
			return err
		}
		f.UseWhatsApp = v
	case FieldAgreeTerms:
		v, err := asBool(name, value)
		if err != nil {
			return err
		}
		f.AgreeTerms = v
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownField, string(name))
	}
	return nil
}

// Reset restores the form to its defaults
func (s *Store) Reset() {
	s.mu.Lock()
	s.form = models.NewLeadForm(s.catalog.DefaultCountryCode())
	next := s.form
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, next)
}

// SetSubmitting sets the submitting flag
func (s *Store) SetSubmitting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = v
}

// Submitting reports whether a submission is in flight
func (s *Store) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Subscribe registers a listener and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// snapshotListeners must be called with s.mu held
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, f models.LeadForm) {
	for _, l := range listeners {
		l(f)
	}
}

func asString(name Field, value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s expects string, got %T", models.ErrFieldType, name, value)
	}
	return v, nil
}

func asBool(name Field, value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s expects bool, got %T", models.ErrFieldType, name, value)
	}
	return v, nil
}
