// internal/utils/validators.go
// Validation utility functions

package utils

import (
	"fmt"
	"regexp"
)

// ValidatePassword validates operator password strength.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if !regexp.MustCompile(`[A-Z]`).MatchString(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if !regexp.MustCompile(`[a-z]`).MatchString(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if !regexp.MustCompile(`[0-9]`).MatchString(password) {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateRosterName validates a saved roster's name.
func ValidateRosterName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("roster name must be at least 2 characters long")
	}
	if len(name) > 255 {
		return fmt.Errorf("roster name must not exceed 255 characters")
	}
	return nil
}

// ValidateFieldSize validates a roster's field size against the roster
// player count: a game needs at least FieldSize players to start.
func ValidateFieldSize(fieldSize, playerCount int) error {
	if fieldSize <= 0 {
		return fmt.Errorf("field size must be positive")
	}
	if playerCount < fieldSize {
		return fmt.Errorf("roster has %d players, fewer than field size %d", playerCount, fieldSize)
	}
	return nil
}
