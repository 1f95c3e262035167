package api

import "fmt"

// Kind categorises API errors.
type Kind int

const (
	KindAPI Kind = iota
	KindAuthentication
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not found"
	default:
		return "api"
	}
}

// Error is returned for failed requests and error responses.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 if no response was received
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found response.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Status == 0 && t.Message == ""
}

// Sentinel errors for errors.Is checks.
var (
	ErrAPI            = &Error{Kind: KindAPI}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrNotFound       = &Error{Kind: KindNotFound}
)
