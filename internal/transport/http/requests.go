package httptransport

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "portal/pkg/domain-errors"
)

// FieldValueRequest sets one scalar or address field.
type FieldValueRequest struct {
	Value *string `json:"value"`
}

func (r *FieldValueRequest) Validate() error {
	if r.Value == nil {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	return nil
}

// CapacityRequest sets the operational capacity. Zero is accepted here and
// reported at submit time.
type CapacityRequest struct {
	Value *int `json:"value"`
}

func (r *CapacityRequest) Validate() error {
	if r.Value == nil {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	return nil
}

// WorkingHoursRequest replaces the opening hours as a whole.
type WorkingHoursRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r *WorkingHoursRequest) Validate() error {
	if r.Start == "" || r.End == "" {
		return dErrors.New(dErrors.CodeValidation, "start and end are required")
	}
	return nil
}

// LoginRequest carries one login attempt. Role is checked by the gate so the
// missing-role message matches the form's.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	if !govalidator.StringLength(r.Email, "1", "255") || !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if !govalidator.StringLength(r.Password, "1", "256") {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}
