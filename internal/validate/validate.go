// Package validate holds the registration input rules.
package validate

import (
	"regexp"
	"unicode"

	"todoservice/internal/apperr"
)

const maxUsernameLen = 20
const minPasswordLen = 8

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Registration checks a username/password pair against the account rules.
// It is a pure check with no side effects.
func Registration(username, password string) error {
	if username == "" || password == "" {
		return apperr.E(apperr.KindValidation, "username and password are required")
	}
	if !alphanumeric.MatchString(username) {
		return apperr.E(apperr.KindValidation, "username may only contain letters and digits")
	}
	if len(username) > maxUsernameLen {
		return apperr.E(apperr.KindValidation, "username may not exceed 20 characters")
	}
	if !isASCII(password) {
		return apperr.E(apperr.KindValidation, "password may only contain ASCII characters")
	}
	if len(password) < minPasswordLen {
		return apperr.E(apperr.KindValidation, "password must be at least 8 characters")
	}
	return nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
