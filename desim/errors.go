package desim

import (
	"errors"
	"fmt"
)

// SimErrorKind classifies the cause of a SimError.
type SimErrorKind int

const (
	ErrKindInvalidTime SimErrorKind = iota
	ErrKindNaNTime
	ErrKindRetroactiveSend
	ErrKindRetroactiveDispatch
	ErrKindNotRegisteredSender
	ErrKindNotRegisteredReceiver
	ErrKindBadMessage
	ErrKindDuplicateObjectName
	ErrKindUnknownObjectName
	ErrKindNotInitialized
	ErrKindAlreadyInitialized
	ErrKindNoObjects
	ErrKindNoInitialEvents
	ErrKindDeleteWhileRunning
	ErrKindSimulationAborted
)

func (k SimErrorKind) String() string {
	switch k {
	case ErrKindInvalidTime:
		return "InvalidTime"
	case ErrKindNaNTime:
		return "NaNTime"
	case ErrKindRetroactiveSend:
		return "RetroactiveSend"
	case ErrKindRetroactiveDispatch:
		return "RetroactiveDispatch"
	case ErrKindNotRegisteredSender:
		return "NotRegisteredSender"
	case ErrKindNotRegisteredReceiver:
		return "NotRegisteredReceiver"
	case ErrKindBadMessage:
		return "BadMessage"
	case ErrKindDuplicateObjectName:
		return "DuplicateObjectName"
	case ErrKindUnknownObjectName:
		return "UnknownObjectName"
	case ErrKindNotInitialized:
		return "NotInitialized"
	case ErrKindAlreadyInitialized:
		return "AlreadyInitialized"
	case ErrKindNoObjects:
		return "NoObjects"
	case ErrKindNoInitialEvents:
		return "NoInitialEvents"
	case ErrKindDeleteWhileRunning:
		return "DeleteWhileRunning"
	case ErrKindSimulationAborted:
		return "SimulationAborted"
	default:
		return "Unknown"
	}
}

// SimError is the single error type returned by the engine, sub-classed by Kind.
type SimError struct {
	Kind SimErrorKind
	msg  string
	err  error
}

func newSimError(kind SimErrorKind, format string, args ...any) *SimError {
	return &SimError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *SimError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *SimError) Unwrap() error { return e.err }

// Is reports whether target is a *SimError of the same Kind, so callers can
// write errors.Is(err, desim.ErrRetroactiveSend) style checks via the sentinels below.
func (e *SimError) Is(target error) bool {
	var other *SimError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinels usable with errors.Is(err, desim.ErrXxx).
var (
	ErrInvalidTime           = &SimError{Kind: ErrKindInvalidTime}
	ErrNaNTime               = &SimError{Kind: ErrKindNaNTime}
	ErrRetroactiveSend       = &SimError{Kind: ErrKindRetroactiveSend}
	ErrRetroactiveDispatch   = &SimError{Kind: ErrKindRetroactiveDispatch}
	ErrNotRegisteredSender   = &SimError{Kind: ErrKindNotRegisteredSender}
	ErrNotRegisteredReceiver = &SimError{Kind: ErrKindNotRegisteredReceiver}
	ErrBadMessage            = &SimError{Kind: ErrKindBadMessage}
	ErrDuplicateObjectName   = &SimError{Kind: ErrKindDuplicateObjectName}
	ErrUnknownObjectName     = &SimError{Kind: ErrKindUnknownObjectName}
	ErrNotInitialized        = &SimError{Kind: ErrKindNotInitialized}
	ErrAlreadyInitialized    = &SimError{Kind: ErrKindAlreadyInitialized}
	ErrNoObjects             = &SimError{Kind: ErrKindNoObjects}
	ErrNoInitialEvents       = &SimError{Kind: ErrKindNoInitialEvents}
	ErrDeleteWhileRunning    = &SimError{Kind: ErrKindDeleteWhileRunning}
	ErrSimulationAborted     = &SimError{Kind: ErrKindSimulationAborted}
)

// wrapAborted wraps any error raised inside the main loop as SimulationAborted,
// including the offending error's own message (spec: main-loop errors abort the
// run with the offending event's description included).
func wrapAborted(cause error) *SimError {
	return &SimError{Kind: ErrKindSimulationAborted, msg: "simulation ended with error", err: cause}
}

// RegistrationErrorKind classifies why Register failed at class-construction time.
type RegistrationErrorKind int

const (
	ErrKindDuplicateHandler RegistrationErrorKind = iota
	ErrKindHandlerNotCallable
	ErrKindNotAMessage
	ErrKindBadPriorityType
	ErrKindBadArity
	ErrKindNoHandlersOrSent
)

func (k RegistrationErrorKind) String() string {
	switch k {
	case ErrKindDuplicateHandler:
		return "DuplicateHandler"
	case ErrKindHandlerNotCallable:
		return "HandlerNotCallable"
	case ErrKindNotAMessage:
		return "NotAMessage"
	case ErrKindBadPriorityType:
		return "BadPriorityType"
	case ErrKindBadArity:
		return "BadArity"
	case ErrKindNoHandlersOrSent:
		return "NoHandlersOrSent"
	default:
		return "Unknown"
	}
}

// RegistrationError is raised by Register at program-init time, never at dispatch.
// It is intentionally distinct from SimError: no Simulator exists yet when it occurs.
type RegistrationError struct {
	Kind  RegistrationErrorKind
	Class string
	msg   string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registering %q: %s: %s", e.Class, e.Kind, e.msg)
}

func newRegistrationError(kind RegistrationErrorKind, class, format string, args ...any) *RegistrationError {
	return &RegistrationError{Kind: kind, Class: class, msg: fmt.Sprintf(format, args...)}
}
