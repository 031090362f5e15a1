package draft

import (
	"slices"
	"time"

	"portal/internal/registration/models"
	"portal/internal/registration/validation"
	dErrors "portal/pkg/domain-errors"
)

// ScalarField names a top-level scalar on the draft.
type ScalarField string

const (
	FieldName            ScalarField = "name"
	FieldContactPerson   ScalarField = "contactPerson"
	FieldEmail           ScalarField = "email"
	FieldPhone           ScalarField = "phone"
	FieldPassword        ScalarField = "password"
	FieldConfirmPassword ScalarField = "confirmPassword"
	FieldRegion          ScalarField = "region"
)

// AddressKey names a field inside Address.
type AddressKey string

const (
	AddressStreet  AddressKey = "street"
	AddressCity    AddressKey = "city"
	AddressState   AddressKey = "state"
	AddressPincode AddressKey = "pincode"
)

// ArrayPath names a value-toggled array. Documents are not addressable here;
// they are removed by index.
type ArrayPath string

const (
	PathServices    ArrayPath = "services"
	PathWorkingDays ArrayPath = "operationalDetails.workingDays"
)

// NestedMutation replaces one field of a nested record. The set of
// implementations is closed: AddressField, Capacity and WorkingHoursField.
type NestedMutation interface {
	apply(d *models.Draft) error
}

// AddressField replaces one Address field.
type AddressField struct {
	Field AddressKey
	Value string
}

// Capacity replaces OperationalDetails.Capacity.
type Capacity struct {
	Value int
}

// WorkingHoursField replaces OperationalDetails.WorkingHours as a whole.
type WorkingHoursField struct {
	Hours models.WorkingHours
}

func (m AddressField) apply(d *models.Draft) error {
	addr, err := withAddressField(d.Address, m.Field, m.Value)
	if err != nil {
		return err
	}
	d.Address = addr
	return nil
}

func (m Capacity) apply(d *models.Draft) error {
	d.OperationalDetails = withCapacity(d.OperationalDetails, m.Value)
	return nil
}

func (m WorkingHoursField) apply(d *models.Draft) error {
	for _, v := range []string{m.Hours.Start, m.Hours.End} {
		if _, err := time.Parse(models.TimeOfDayLayout, v); err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "working hours must use HH:MM")
		}
	}
	d.OperationalDetails = withWorkingHours(d.OperationalDetails, m.Hours)
	return nil
}

// withAddressField rebuilds an Address with one field replaced.
func withAddressField(a models.Address, key AddressKey, value string) (models.Address, error) {
	next := models.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
	}
	switch key {
	case AddressStreet:
		next.Street = value
	case AddressCity:
		next.City = value
	case AddressState:
		p, err := models.ParseProvince(value)
		if err != nil {
			return a, err
		}
		next.State = p
	case AddressPincode:
		next.Pincode = validation.FilterDigits(value, models.MaxPincodeLength)
	default:
		return a, dErrors.New(dErrors.CodeInvalidInput, "unknown address field: "+string(key))
	}
	return next, nil
}

// withCapacity rebuilds OperationalDetails with a new capacity. Range checks
// happen at submit time so the form can hold a transient zero.
func withCapacity(o models.OperationalDetails, capacity int) models.OperationalDetails {
	return models.OperationalDetails{
		Capacity:     capacity,
		WorkingHours: o.WorkingHours,
		WorkingDays:  slices.Clone(o.WorkingDays),
	}
}

func withWorkingHours(o models.OperationalDetails, hours models.WorkingHours) models.OperationalDetails {
	return models.OperationalDetails{
		Capacity:     o.Capacity,
		WorkingHours: models.WorkingHours{Start: hours.Start, End: hours.End},
		WorkingDays:  slices.Clone(o.WorkingDays),
	}
}

func withWorkingDays(o models.OperationalDetails, days []models.Weekday) models.OperationalDetails {
	return models.OperationalDetails{
		Capacity:     o.Capacity,
		WorkingHours: o.WorkingHours,
		WorkingDays:  days,
	}
}
