// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	// bcrypt rejects input past 72 bytes.
	maxPasswordLength = 72
	maxEmailLength    = 254
)

// ValidateEmail checks that email is a single bare address.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is not a valid address", email)
	}
	return nil
}

// ValidatePassword checks that a password is present and hashable.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d bytes", maxPasswordLength)
	}
	return nil
}
