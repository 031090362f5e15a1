package validation

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordStrength scores a password from 0 (guessable) to 4 (strong). The
// score is a hint for the strength meter only; submit-time rules stay the
// length and character-class checks. userInputs such as the email or contact
// name lower the score of passwords built from them.
func PasswordStrength(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	inputs := make([]string, 0, len(userInputs))
	for _, in := range userInputs {
		if in != "" {
			inputs = append(inputs, in)
		}
	}
	return zxcvbn.PasswordStrength(password, inputs).Score
}
