package errs

import (
	"errors"
	"fmt"
)

// Kind classifies game errors so callers can pick the right user-visible
// reaction without string matching.
type Kind uint8

const (
	Unknown Kind = iota
	Validation
	Blocked
	CorruptState
)

var kindNames = map[Kind]string{
	Unknown:      "unknown",
	Validation:   "validation",
	Blocked:      "blocked",
	CorruptState: "corrupt_state",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// E is the categorized error type surfaced to players and admins.
type E struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Cause }

func New(kind Kind, msg string) *E {
	return &E{Kind: kind, Message: msg}
}

func Validationf(format string, a ...any) *E {
	return New(Validation, fmt.Sprintf(format, a...))
}

func Blockedf(format string, a ...any) *E {
	return New(Blocked, fmt.Sprintf(format, a...))
}

func Corrupt(msg string, cause error) *E {
	return &E{Kind: CorruptState, Message: msg, Cause: cause}
}

// KindOf reports the Kind of err, or Unknown if err is not an *E.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}

	return Unknown
}

// MessageOf returns the user-visible message of err, falling back to
// err.Error() for uncategorized errors.
func MessageOf(err error) string {
	var e *E
	if errors.As(err, &e) {
		return e.Message
	}

	return err.Error()
}
