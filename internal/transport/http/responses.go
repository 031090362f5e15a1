package httptransport

import (
	"time"

	"portal/internal/login"
	"portal/internal/marketplace"
	"portal/internal/registration/models"
	"portal/internal/registration/registry"
	"portal/internal/registration/submission"
	"portal/internal/registration/validation"
	id "portal/pkg/domain"
)

// DraftResponse is the browser's view of one registration form.
type DraftResponse struct {
	DraftID          id.DraftID       `json:"draft_id"`
	State            submission.State `json:"state"`
	PasswordSet      bool             `json:"password_set"`
	PasswordStrength int              `json:"password_strength"`
	Draft            *models.Draft    `json:"draft"`
}

func newDraftResponse(form *registry.Form) DraftResponse {
	d := form.Store.Snapshot()
	d.OperationalDetails.WorkingDays = models.SortWeekdays(d.OperationalDetails.WorkingDays)
	return DraftResponse{
		DraftID:          form.ID,
		State:            form.Controller.State(),
		PasswordSet:      d.Password != "",
		PasswordStrength: validation.PasswordStrength(d.Password, d.Email, d.ContactPerson, d.Name),
		Draft:            d,
	}
}

// DocumentResponse describes a freshly staged attachment and its position.
type DocumentResponse struct {
	Index    int             `json:"index"`
	Document models.Document `json:"document"`
}

// OptionsResponse lists the closed sets the form selectors render.
type OptionsResponse struct {
	Provinces []models.Province `json:"provinces"`
	Weekdays  []models.Weekday  `json:"weekdays"`
	Services  []models.Service  `json:"services"`
	Roles     []login.Role      `json:"roles"`
}

// SessionResponse resolves a bearer token to its user.
type SessionResponse struct {
	User      marketplace.User `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// HealthResponse reports process and dependency health.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}
