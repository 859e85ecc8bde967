package ledger

import (
	"errors"
	"fmt"
)

// TransportKind classifies network/protocol failures.
type TransportKind int

const (
	// NotOK means the service answered with a non-success status or an
	// unreadable body.
	NotOK TransportKind = iota + 1
	// Unreachable means no response arrived: connection failure, timeout or
	// cancellation.
	Unreachable
)

func (k TransportKind) String() string {
	switch k {
	case NotOK:
		return "not_ok"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

var (
	ErrNotOK       = errors.New("ledger service returned a non-success response")
	ErrUnreachable = errors.New("ledger service unreachable")
)

// TransportError is a failure at the network/protocol layer.
type TransportError struct {
	Kind       TransportKind
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("ledger %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets callers match a kind with errors.Is(err, ErrUnreachable).
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrNotOK:
		return e.Kind == NotOK
	case ErrUnreachable:
		return e.Kind == Unreachable
	}
	return false
}

// NotOKError builds a NotOK failure for op.
func NotOKError(op string, status int, err error) error {
	return &TransportError{Kind: NotOK, Op: op, StatusCode: status, Err: err}
}

// UnreachableError builds an Unreachable failure for op.
func UnreachableError(op string, err error) error {
	return &TransportError{Kind: Unreachable, Op: op, Err: err}
}

// ServerValidationError carries the service's rejection of a well-formed
// request.
type ServerValidationError struct {
	StatusCode int
	Message    string
}

func (e *ServerValidationError) Error() string {
	return "ledger rejected transaction: " + e.Message
}

// KindOf returns a short classification of err for logs.
func KindOf(err error) string {
	var sv *ServerValidationError
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &sv):
		return "server_validation"
	case errors.As(err, &te):
		return te.Kind.String()
	default:
		return "internal"
	}
}
