package sdk

import "fmt"

// ErrAuthenticationFailed represents the backend rejecting a set of login
// credentials.
type ErrAuthenticationFailed struct {
	// Reason is the backend's explanation, when it offers one.
	Reason string `json:"message,omitempty"`
}

func (e *ErrAuthenticationFailed) Error() string {
	if e.Reason == "" {
		return "Login failed. Please check your username and password."
	}
	return fmt.Sprintf("Login failed: %s", e.Reason)
}

// ErrAuthenticationExpired represents an authenticated request that was
// rejected with a 401 and could not be recovered by refreshing the session.
// The session has already been logged out by the time a caller sees this.
type ErrAuthenticationExpired struct{}

func (e *ErrAuthenticationExpired) Error() string {
	return "Your session has expired. Please log in again."
}

// ErrConfiguration represents a programming error, such as invoking the
// authenticated request wrapper without a session.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("Configuration error: %s", e.Reason)
}

type ErrAuthorization struct {
	Reason string `json:"message,omitempty"`
}

func (e *ErrAuthorization) Error() string {
	return "The request is not authorized."
}

type ErrBadRequest struct {
	Reason  string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Reason)
	}
	msg := fmt.Sprintf("Bad request: %s:", e.Reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

type ErrNotFound struct {
	Reason string `json:"message,omitempty"`
}

func (e *ErrNotFound) Error() string {
	if e.Reason == "" {
		return "The requested resource was not found."
	}
	return fmt.Sprintf("Not found: %s", e.Reason)
}

type ErrConflict struct {
	Reason string `json:"message,omitempty"`
}

func (e *ErrConflict) Error() string {
	if e.Reason == "" {
		return "The request conflicts with the current state of the resource."
	}
	return fmt.Sprintf("Conflict: %s", e.Reason)
}

type ErrInternalServer struct {
	Reason string `json:"message,omitempty"`
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}
