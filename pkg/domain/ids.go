package domain

import (
	"github.com/google/uuid"

	dErrors "portal/pkg/domain-errors"
)

// DraftID identifies one registration form instance held by the service.
type DraftID uuid.UUID

// NewDraftID returns a fresh random draft ID.
func NewDraftID() DraftID {
	return DraftID(uuid.New())
}

// ParseDraftID parses a draft ID at a trust boundary. Nil UUIDs are rejected.
func ParseDraftID(s string) (DraftID, error) {
	if s == "" {
		return DraftID{}, dErrors.New(dErrors.CodeInvalidInput, "draft ID required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return DraftID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid draft ID")
	}
	if parsed == uuid.Nil {
		return DraftID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid draft ID")
	}
	return DraftID(parsed), nil
}

func (id DraftID) String() string {
	return uuid.UUID(id).String()
}

func (id DraftID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id DraftID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *DraftID) UnmarshalText(text []byte) error {
	parsed, err := ParseDraftID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
