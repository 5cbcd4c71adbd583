package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNoProfileChanges   = errors.New("no profile fields to update")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)
