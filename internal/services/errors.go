package services

import "fmt"

// AuthRequiredError marks calls that need a bearer token the session does not
// have. Reads degrade silently to empty results; checkout surfaces it.
type AuthRequiredError struct {
	Op string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s: authentication required", e.Op)
}

// NetworkError marks transient transport failures. The operation stays
// retryable by repeating the user action; nothing is queued.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError carries a message supplied by the backend for a failed write.
// It is surfaced to the user verbatim when present.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: request failed with status %d", e.Op, e.Status)
}
