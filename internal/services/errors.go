package services

import "errors"

// Errors returned by the account and event services. Handlers map them to
// HTTP statuses with errors.Is; the message of each is shown to callers.
var (
	ErrUserNotFound      = errors.New("User does not exist")
	ErrUserAlreadyExists = errors.New("User already exists")
	ErrAccountNotActive  = errors.New("Account is not active. Kindly verify your account")
	ErrInvalidOtp        = errors.New("Invalid Email or OTP")
	ErrOtpExpired        = errors.New("OTP has expired")
	ErrInvalidCredential = errors.New("Invalid password")
	ErrHashFailure       = errors.New("Unable to secure password")
	ErrDuplicateEvent    = errors.New("An event with the same title or description already exists")
	ErrEventNotFound     = errors.New("Event does not exist")
)
