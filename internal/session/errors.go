package session

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned by Start while a session is starting or live.
var ErrSessionActive = errors.New("a shortcut session is already active")

var (
	errStreamsEnded  = errors.New("all notification streams ended")
	errSessionClosed = errors.New("session closed by backend")
)

// Kind classifies controller failures.
type Kind int

const (
	KindInput Kind = iota + 1
	KindBind
	KindRejected
	KindSubscription
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindBind:
		return "bind error"
	case KindRejected:
		return "bind rejected"
	case KindSubscription:
		return "subscription error"
	case KindClose:
		return "close error"
	default:
		return "unknown error"
	}
}

// Error is a failure scoped to the controller's state machine.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// classifyBind maps a create/bind failure onto a kind and the status text
// shown to the user.
func classifyBind(err error) (Kind, string) {
	switch {
	case errors.Is(err, ErrCancelled):
		return KindRejected, "Cancelled"
	case errors.Is(err, ErrOtherResponse):
		return KindRejected, "Other response error"
	default:
		return KindBind, err.Error()
	}
}
