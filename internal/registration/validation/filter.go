package validation

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// PhonePrefix is the country code every transmitted phone number carries.
const PhonePrefix = "+977"

// FilterDigits keeps ASCII digits only and truncates to max characters. It
// mirrors the input filtering of numeric form fields; it is not a rule.
func FilterDigits(input string, max int) string {
	digits := govalidator.WhiteList(input, "0-9")
	if max > 0 && len(digits) > max {
		digits = digits[:max]
	}
	return digits
}

// FilterPhoneLocal strips a pasted country prefix and keeps at most max digits.
func FilterPhoneLocal(input string, max int) string {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimPrefix(trimmed, PhonePrefix)
	return FilterDigits(trimmed, max)
}

// NormalizePhone prepends the country prefix unless it is already present.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, PhonePrefix) {
		return phone
	}
	return PhonePrefix + phone
}
