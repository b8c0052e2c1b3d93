package employees

import "errors"

var (
	ErrNotFound          = errors.New("employee not found")
	ErrProtectedEmployee = errors.New("employee is protected from changes by the caller")
	ErrRoleNotGrantable  = errors.New("role can only be granted by an administrator")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmailTaken        = errors.New("email already exists")
)
