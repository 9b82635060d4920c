package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin user already exists")

	// Video related errors
	ErrVideoNotFound = errors.New("video not found")
	ErrNoVideoFile   = errors.New("no video file uploaded")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
