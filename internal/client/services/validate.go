package services

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrValidation marks failures detected before any network call.
var ErrValidation = errors.New("validation error")

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	passwordLowerRe = regexp.MustCompile(`[a-z]`)
	passwordUpperRe = regexp.MustCompile(`[A-Z]`)
	passwordDigitRe = regexp.MustCompile(`\d`)
)

func validationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

func validateLogin(username, password string) error {
	if username == "" {
		return validationError("username is required")
	}
	if password == "" {
		return validationError("password is required")
	}
	if len(password) < 6 {
		return validationError("password must be at least 6 characters")
	}
	return nil
}

func validateRegistration(username, email, password string) error {
	switch {
	case username == "":
		return validationError("username is required")
	case len(username) < 3:
		return validationError("username must be at least 3 characters")
	case len(username) > 50:
		return validationError("username must be less than 50 characters")
	case !usernameRe.MatchString(username):
		return validationError("username can only contain letters, numbers, hyphens and underscores")
	}

	if email == "" {
		return validationError("email is required")
	}
	if !emailRe.MatchString(email) {
		return validationError("invalid email address")
	}

	switch {
	case password == "":
		return validationError("password is required")
	case len(password) < 8:
		return validationError("password must be at least 8 characters")
	case !passwordLowerRe.MatchString(password),
		!passwordUpperRe.MatchString(password),
		!passwordDigitRe.MatchString(password):
		return validationError("password must contain an uppercase letter, a lowercase letter and a number")
	}

	return nil
}
