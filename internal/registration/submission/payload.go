package submission

import (
	"portal/internal/marketplace"
	"portal/internal/registration/models"
	"portal/internal/registration/validation"
	"portal/pkg/platform/sets"
)

// BuildPayload reshapes a validated draft into the backend's register body.
// The contact person becomes the account name and the draft name becomes the
// center name; nested records pass through unchanged.
func BuildPayload(d *models.Draft) marketplace.RegisterPayload {
	days := make([]string, 0, len(d.OperationalDetails.WorkingDays))
	for _, day := range sets.Dedupe(d.OperationalDetails.WorkingDays) {
		days = append(days, string(day))
	}
	services := make([]string, 0, len(d.Services))
	for _, svc := range sets.Dedupe(d.Services) {
		services = append(services, string(svc))
	}

	return marketplace.RegisterPayload{
		Name:       d.ContactPerson,
		Email:      d.Email,
		Password:   d.Password,
		Phone:      validation.NormalizePhone(d.Phone),
		Role:       marketplace.RoleCenter,
		CenterName: d.Name,
		Address: marketplace.Address{
			Street:  d.Address.Street,
			City:    d.Address.City,
			State:   string(d.Address.State),
			Pincode: d.Address.Pincode,
		},
		Region: string(d.Region),
		OperationalDetails: marketplace.OperationalDetails{
			Capacity: d.OperationalDetails.Capacity,
			WorkingHours: marketplace.WorkingHours{
				Start: d.OperationalDetails.WorkingHours.Start,
				End:   d.OperationalDetails.WorkingHours.End,
			},
			WorkingDays: days,
		},
		Services: services,
	}
}
