package service

import "errors"

var (
	// ErrEmailAlreadyExists is returned when registering an email that is already taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidTransition is returned when an outreach status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNothingToSend is returned when a send request selects no deliverable outreach.
	ErrNothingToSend = errors.New("no outreach ready to send")
)

// ValidationError reports invalid client input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ErrLocationRequired rejects requirement sets without a usable location.
var ErrLocationRequired = ValidationError{Field: "location", Message: "location is required"}

func invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}
