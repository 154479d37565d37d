package service

import "errors"

// Sentinel errors shared across services. Handlers translate them into the
// HTTP taxonomy: NotFound -> 404, Conflict -> 400, Forbidden -> 403,
// invalid credentials -> 401.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidCode  = errors.New("invalid confirmation code")
)
