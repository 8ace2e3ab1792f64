package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated marks a 401 from the upstream API. The gateway has
// already cleared the session by the time callers see this; they funnel
// it into a redirect to the login view.
var ErrUnauthenticated = errors.New("session is no longer valid")

// Kind classifies a gateway failure.
type Kind int

const (
	// KindNetwork covers transport failures: connection refused, timeout,
	// or an unreadable response. Retryable by the operator.
	KindNetwork Kind = iota
	// KindUnauthenticated is a 401 from upstream.
	KindUnauthenticated
	// KindBusiness is a well-formed success:false response, or a non-2xx
	// status with a server-supplied message.
	KindBusiness
	// KindDecode is a response body the envelope decoder could not parse.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBusiness:
		return "business"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the uniform failure shape every gateway operation returns.
// Message is always human-readable: the server's own message when the
// body carried one, else a generic fallback.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status, 0 when the request never completed
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnauthenticated) match 401 failures.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated && e.Kind == KindUnauthenticated
}

// UserMessage extracts the human-readable message from a gateway failure,
// or a generic fallback for unexpected error values.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return "Something went wrong. Please try again."
}
