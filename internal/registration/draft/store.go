// Package draft holds the form state of one registration attempt. All edits go
// through a closed set of typed mutators; there is no field lookup by string
// beyond parsing the known names.
package draft

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"portal/internal/registration/models"
	"portal/internal/registration/validation"
	"portal/pkg/platform/sets"
	dErrors "portal/pkg/domain-errors"
)

// DefaultMaxDocuments bounds how many attachments one draft may stage unless
// WithMaxDocuments says otherwise.
const DefaultMaxDocuments = 10

type lockState int

const (
	editable lockState = iota
	frozen
	discarded
)

// Store owns a single Draft. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	draft *models.Draft
	state lockState
	now   func() time.Time

	maxDocuments int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMaxDocuments sets the attachment cap. Zero or less lifts it.
func WithMaxDocuments(n int) Option {
	return func(s *Store) {
		s.maxDocuments = n
	}
}

// New creates a store holding a default draft.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now, maxDocuments: DefaultMaxDocuments}
	for _, opt := range opts {
		opt(s)
	}
	s.draft = models.NewDraft(s.now())
	return s
}

// ParseScalarField maps a wire name onto a known scalar field.
func ParseScalarField(name string) (ScalarField, error) {
	switch f := ScalarField(name); f {
	case FieldName, FieldContactPerson, FieldEmail, FieldPhone, FieldPassword, FieldConfirmPassword, FieldRegion:
		return f, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown field: "+name)
}

// ParseAddressKey maps a wire name onto a known Address field.
func ParseAddressKey(name string) (AddressKey, error) {
	switch k := AddressKey(name); k {
	case AddressStreet, AddressCity, AddressState, AddressPincode:
		return k, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown address field: "+name)
}

// ParseArrayPath maps a wire name onto a toggleable array.
func ParseArrayPath(name string) (ArrayPath, error) {
	switch p := ArrayPath(name); p {
	case PathServices, PathWorkingDays:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown array field: "+name)
}

// SetField replaces a top-level scalar.
func (s *Store) SetField(field ScalarField, value string) error {
	return s.mutate(func(d *models.Draft) error {
		switch field {
		case FieldName:
			d.Name = value
		case FieldContactPerson:
			d.ContactPerson = value
		case FieldEmail:
			d.Email = value
		case FieldPhone:
			d.Phone = validation.FilterPhoneLocal(value, models.MaxPhoneLocalLength)
		case FieldPassword:
			d.Password = value
		case FieldConfirmPassword:
			d.ConfirmPassword = value
		case FieldRegion:
			p, err := models.ParseProvince(value)
			if err != nil {
				return err
			}
			d.Region = p
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "unknown field: "+string(field))
		}
		return nil
	})
}

// SetNestedField replaces one field inside Address or OperationalDetails,
// installing a rebuilt parent record and keeping its siblings.
func (s *Store) SetNestedField(m NestedMutation) error {
	if m == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "mutation required")
	}
	return s.mutate(m.apply)
}

// SetArrayField adds value to the array at path when present is true (no
// duplicates) and removes every occurrence otherwise.
func (s *Store) SetArrayField(path ArrayPath, value string, present bool) error {
	return s.mutate(func(d *models.Draft) error {
		switch path {
		case PathServices:
			svc, err := models.ParseService(value)
			if err != nil {
				return err
			}
			d.Services = sets.Toggle(d.Services, svc, present)
		case PathWorkingDays:
			day, err := models.ParseWeekday(value)
			if err != nil {
				return err
			}
			days := sets.Toggle(d.OperationalDetails.WorkingDays, day, present)
			d.OperationalDetails = withWorkingDays(d.OperationalDetails, days)
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "unknown array field: "+string(path))
		}
		return nil
	})
}

// AddDocument appends an attachment. Same-named files are distinct attachments.
func (s *Store) AddDocument(name, contentType string, content []byte) (models.Document, error) {
	doc := models.Document{
		ID:          uuid.New(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}
	err := s.mutate(func(d *models.Draft) error {
		if s.maxDocuments > 0 && len(d.Documents) >= s.maxDocuments {
			return dErrors.New(dErrors.CodeValidation, "too many documents")
		}
		docs := make([]models.Document, 0, len(d.Documents)+1)
		docs = append(docs, d.Documents...)
		d.Documents = append(docs, doc)
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// RemoveDocument deletes the attachment at index.
func (s *Store) RemoveDocument(index int) error {
	return s.mutate(func(d *models.Draft) error {
		if index < 0 || index >= len(d.Documents) {
			return dErrors.New(dErrors.CodeInvalidInput, "document index out of range")
		}
		docs := make([]models.Document, 0, len(d.Documents)-1)
		docs = append(docs, d.Documents[:index]...)
		d.Documents = append(docs, d.Documents[index+1:]...)
		return nil
	})
}

// Snapshot returns a deep copy of the current draft.
func (s *Store) Snapshot() *models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// UpdatedAt reports when the draft last changed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.UpdatedAt
}

// FreezeSnapshot rejects edits until Thaw and returns a copy of the draft in
// one step, so the copy is exactly what a submission sends. Edits racing the
// call either land in the copy or are rejected.
func (s *Store) FreezeSnapshot() *models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == editable {
		s.state = frozen
	}
	return s.draft.Clone()
}

// Thaw re-enables edits after a failed submission.
func (s *Store) Thaw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == frozen {
		s.state = editable
	}
}

// Discard drops the draft contents. The store rejects every later edit.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = discarded
	s.draft = models.NewDraft(s.now())
}

func (s *Store) mutate(fn func(d *models.Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case frozen:
		return dErrors.New(dErrors.CodeInvalidState, "draft is being submitted")
	case discarded:
		return dErrors.New(dErrors.CodeInvalidState, "draft has been discarded")
	}

	// Work on a copy so a failed mutation leaves the draft untouched.
	next := *s.draft
	if err := fn(&next); err != nil {
		return err
	}
	next.UpdatedAt = s.now()
	s.draft = &next
	return nil
}
