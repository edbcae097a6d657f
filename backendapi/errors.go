package backendapi

// Error is a backend rejection carrying the backend-provided message and a
// sentinel for branching. Error() returns the message so callers can surface
// it to users unchanged.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "backend error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(status int, message string, sentinel error) *Error {
	return &Error{Status: status, Message: message, Err: sentinel}
}
