package errors

import "fmt"

// ErrorType classifies failures by where they occur in a collection run
type ErrorType string

const (
	// ErrorTypeDiscovery marks a seed page render failure. Fatal to the run.
	ErrorTypeDiscovery ErrorType = "discovery"
	// ErrorTypeSubPage marks a selected sub-page render failure. The page is
	// skipped and the run continues.
	ErrorTypeSubPage ErrorType = "subpage"
	// ErrorTypeFetch marks an image download failure. Only that URL is affected.
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeExtraction marks article content that could not be identified.
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeServer     ErrorType = "server_error"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error carries a failure classification alongside the message
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error without an HTTP code
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error from an underlying error
func Wrap(t ErrorType, err error) *Error {
	return &Error{Type: t, Message: err.Error()}
}

// IsFatal reports whether an error type terminates the whole run.
// Only seed-level discovery failures do; everything else is converted into a
// per-item result at the item boundary.
func IsFatal(errorType ErrorType) bool {
	return errorType == ErrorTypeDiscovery
}
