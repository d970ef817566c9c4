package utils

import "errors"

// Authentication errors returned by the auth service and JWT helpers.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrForbidden          = errors.New("FORBIDDEN")
)
