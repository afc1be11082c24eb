package api

import "errors"

// ValidationError reports input the backend (or the client) rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnauthorizedError reports a 401 response. By the time an operation sees it
// the forced-logout side effect has already run.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// InvalidOTPError reports a passcode mismatch or an expired challenge.
type InvalidOTPError struct {
	Message string
}

func (e *InvalidOTPError) Error() string { return e.Message }

// NetworkError reports a timeout or an unreachable backend.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string { return e.Message }

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError reports a well-formed failure envelope or a malformed payload
// for any reason not covered by the other types.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}
