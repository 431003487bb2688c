package util

import (
	"regexp"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func ValidEmail(email string) bool {
	return len(email) <= 100 && emailPattern.MatchString(email)
}

// ValidUsername allows 3-20 chars of letters, digits and underscore.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidPassword requires at least 8 characters with at least one letter and
// one digit.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
