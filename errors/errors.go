package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEventNotFound      = fmt.Errorf("event not found")
	ErrInvalidEvent       = fmt.Errorf("invalid event")
	ErrEventFull          = fmt.Errorf("event is full")
	ErrScheduleConflict   = fmt.Errorf("already registered for another event at that time")
	ErrAlreadyRegistered  = fmt.Errorf("already registered")
	ErrNotRegistered      = fmt.Errorf("not registered")
	ErrLoginRequired      = fmt.Errorf("login required")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidUser        = fmt.Errorf("invalid user")
	ErrNotEventOwner      = fmt.Errorf("only the creator can do this")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrInvalidHash        = fmt.Errorf("invalid password hash format")
	ErrTokenGeneration    = fmt.Errorf("failed to generate session token")
	ErrInvalidSession     = fmt.Errorf("session expired or invalid")
	ErrRegistrationBusy   = fmt.Errorf("too many registrations at once, please try again")
)
