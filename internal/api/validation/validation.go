// Package validation holds the field-level checks that run before every
// write. Each check is an explicit function returning a *FieldError so
// handlers can report the offending field back to the caller.
package validation

import (
	"fmt"
	"regexp"
	"time"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

const (
	MinYear  = 1900
	MinScore = 1
	MaxScore = 10
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\-_.]{1,20}$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateUsername checks the username pattern and the reserved name "me".
// Applied on every create or update that carries a username.
func ValidateUsername(username string) *FieldError {
	if !usernameRe.MatchString(username) {
		return NewFieldError("username", "must start with a letter and contain 2-21 letters, digits, '-', '_' or '.'")
	}
	if username == "me" {
		return NewFieldError("username", "username 'me' is reserved")
	}
	return nil
}

// ValidateYear rejects years before 1900 and years in the future.
func ValidateYear(year int) *FieldError {
	if year < MinYear || year > time.Now().Year() {
		return NewFieldError("year", fmt.Sprintf("must be between %d and the current year", MinYear))
	}
	return nil
}

// ValidateScore bounds a review score to [1, 10].
func ValidateScore(score int) *FieldError {
	if score < MinScore || score > MaxScore {
		return NewFieldError("score", fmt.Sprintf("must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

// ValidateSlug checks the URL-safe slug used by categories and genres.
func ValidateSlug(slug string) *FieldError {
	if len(slug) == 0 || len(slug) > 50 || !slugRe.MatchString(slug) {
		return NewFieldError("slug", "must contain only letters, digits, '-' or '_' (max 50 chars)")
	}
	return nil
}

// ValidateRole restricts a role to the known choices.
func ValidateRole(role string) *FieldError {
	switch role {
	case "user", "moderator", "admin":
		return nil
	}
	return NewFieldError("role", "must be one of: user, moderator, admin")
}
