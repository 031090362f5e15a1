// Package validation holds the submit-time rules for a registration draft.
// Rules run in a fixed order and the first failure is the only one reported.
package validation

import (
	"unicode/utf8"

	"portal/internal/registration/models"
)

// Rule identifies which check a draft failed.
type Rule string

const (
	RulePasswordMismatch   Rule = "password_mismatch"
	RulePasswordLength     Rule = "password_length"
	RulePasswordComplexity Rule = "password_complexity"
	RuleCapacity           Rule = "capacity"
	RuleWorkingDays        Rule = "working_days"
	RuleServices           Rule = "services"
	RuleRegion             Rule = "region"
	RuleState              Rule = "state"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// User-facing messages, one per rule.
const (
	MsgPasswordMismatch   = "Passwords do not match"
	MsgPasswordLength     = "Password must be at least 6 characters long"
	MsgPasswordComplexity = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	MsgCapacity           = "Capacity must be at least 1"
	MsgWorkingDays        = "Please select at least one working day"
	MsgServices           = "Please select at least one service"
	MsgRegion             = "Please select a region"
	MsgState              = "Please select a state"
)

// Violation is a single failed rule.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (v *Violation) Error() string {
	return v.Message
}

type check struct {
	rule    Rule
	message string
	ok      func(d *models.Draft) bool
}

// checks is ordered; the order decides which violation wins.
var checks = []check{
	{RulePasswordMismatch, MsgPasswordMismatch, func(d *models.Draft) bool {
		return d.Password == d.ConfirmPassword
	}},
	{RulePasswordLength, MsgPasswordLength, func(d *models.Draft) bool {
		return utf8.RuneCountInString(d.Password) >= MinPasswordLength
	}},
	{RulePasswordComplexity, MsgPasswordComplexity, func(d *models.Draft) bool {
		return IsComplexPassword(d.Password)
	}},
	{RuleCapacity, MsgCapacity, func(d *models.Draft) bool {
		return d.OperationalDetails.Capacity >= 1
	}},
	{RuleWorkingDays, MsgWorkingDays, func(d *models.Draft) bool {
		return len(d.OperationalDetails.WorkingDays) > 0
	}},
	{RuleServices, MsgServices, func(d *models.Draft) bool {
		return len(d.Services) > 0
	}},
	// A fresh draft has no province selected; both selects are required.
	{RuleRegion, MsgRegion, func(d *models.Draft) bool {
		return isProvince(d.Region)
	}},
	{RuleState, MsgState, func(d *models.Draft) bool {
		return isProvince(d.Address.State)
	}},
}

func isProvince(p models.Province) bool {
	_, err := models.ParseProvince(string(p))
	return err == nil
}

// Validate returns the first violated rule, or nil when the draft may be submitted.
func Validate(d *models.Draft) *Violation {
	for _, c := range checks {
		if !c.ok(d) {
			return &Violation{Rule: c.rule, Message: c.message}
		}
	}
	return nil
}

// IsComplexPassword reports whether password has an ASCII lowercase letter, an
// ASCII uppercase letter and an ASCII digit.
func IsComplexPassword(password string) bool {
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}
