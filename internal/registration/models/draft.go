package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Default values applied when a registration view is entered.
const (
	DefaultCapacity     = 100
	DefaultHoursStart   = "09:00"
	DefaultHoursEnd     = "18:00"
	TimeOfDayLayout     = "15:04"
	MaxPincodeLength    = 6
	MaxPhoneLocalLength = 10
)

// Draft is the in-progress, unpersisted distribution center registration.
//
// Invariants (checked at submit time, not on every edit):
//   - Password equals ConfirmPassword and satisfies the complexity rule
//   - OperationalDetails.Capacity >= 1
//   - WorkingDays and Services are non-empty
//   - Region and Address.State belong to the province set
type Draft struct {
	Name               string             `json:"name"`
	ContactPerson      string             `json:"contactPerson"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	Password           string             `json:"-"`
	ConfirmPassword    string             `json:"-"`
	Address            Address            `json:"address"`
	Region             Province           `json:"region"`
	OperationalDetails OperationalDetails `json:"operationalDetails"`
	Services           []Service          `json:"services"`
	Documents          []Document         `json:"documents"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Address is owned by the draft and has no lifecycle of its own.
type Address struct {
	Street  string   `json:"street"`
	City    string   `json:"city"`
	State   Province `json:"state"`
	Pincode string   `json:"pincode"`
}

// OperationalDetails groups capacity and opening times.
type OperationalDetails struct {
	Capacity     int          `json:"capacity"`
	WorkingHours WorkingHours `json:"workingHours"`
	WorkingDays  []Weekday    `json:"workingDays"`
}

// WorkingHours is a start/end pair of "HH:MM" times of day.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Document is an attachment staged on the draft. Content never leaves the
// process; only metadata is rendered back to the browser.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Content     []byte    `json:"-"`
}

// NewDraft builds a draft carrying the registration form defaults.
func NewDraft(now time.Time) *Draft {
	return &Draft{
		OperationalDetails: OperationalDetails{
			Capacity: DefaultCapacity,
			WorkingHours: WorkingHours{
				Start: DefaultHoursStart,
				End:   DefaultHoursEnd,
			},
			WorkingDays: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday},
		},
		Services:  []Service{ServiceStorage, ServiceDistribution},
		Documents: []Document{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy; callers may mutate it freely.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.OperationalDetails.WorkingDays = slices.Clone(d.OperationalDetails.WorkingDays)
	c.Services = slices.Clone(d.Services)
	c.Documents = make([]Document, len(d.Documents))
	for i, doc := range d.Documents {
		doc.Content = slices.Clone(doc.Content)
		c.Documents[i] = doc
	}
	return &c
}
