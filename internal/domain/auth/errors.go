package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionInvalid     = errors.New("session is missing, expired or revoked")
)
