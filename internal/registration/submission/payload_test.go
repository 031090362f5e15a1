package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portal/internal/marketplace"
	"portal/internal/registration/models"
)

func TestBuildPayload(t *testing.T) {
	d := models.NewDraft(time.Now())
	d.Name = "Kathmandu Hub"
	d.ContactPerson = "Sita Sharma"
	d.Email = "hub@example.com"
	d.Phone = "9812345678"
	d.Password = "Secret1"
	d.ConfirmPassword = "Secret1"
	d.Region = models.ProvinceBagmati
	d.Address = models.Address{Street: "Ring Road", City: "Kathmandu", State: models.ProvinceBagmati, Pincode: "44600"}
	d.OperationalDetails.WorkingDays = []models.Weekday{models.Saturday, models.Monday}
	d.Services = []models.Service{models.ServiceColdStorage}

	got := BuildPayload(d)

	assert.Equal(t, marketplace.RegisterPayload{
		Name:       "Sita Sharma",
		Email:      "hub@example.com",
		Password:   "Secret1",
		Phone:      "+9779812345678",
		Role:       "CENTER",
		CenterName: "Kathmandu Hub",
		Address:    marketplace.Address{Street: "Ring Road", City: "Kathmandu", State: "Bagmati", Pincode: "44600"},
		Region:     "Bagmati",
		OperationalDetails: marketplace.OperationalDetails{
			Capacity:     100,
			WorkingHours: marketplace.WorkingHours{Start: "09:00", End: "18:00"},
			WorkingDays:  []string{"Saturday", "Monday"},
		},
		Services: []string{"Cold Storage"},
	}, got)
}

func TestBuildPayload_PhoneAlreadyPrefixed(t *testing.T) {
	d := models.NewDraft(time.Now())
	d.Phone = "+9779812345678"

	assert.Equal(t, "+9779812345678", BuildPayload(d).Phone)
}

func TestFormatFieldErrors(t *testing.T) {
	assert.Equal(t, "", FormatFieldErrors(nil))
	assert.Equal(t, "email: already registered", FormatFieldErrors([]marketplace.FieldError{{Field: "email", Message: "already registered"}}))
}
