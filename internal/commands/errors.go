package commands

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// wrapUserError shows msg to the user and keeps err for errors.Is checks.
func wrapUserError(msg string, err error) *UserError {
	return &UserError{Message: msg, Err: err}
}
