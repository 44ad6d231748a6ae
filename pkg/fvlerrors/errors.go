// Package fvlerrors defines the error taxonomy shared across the template
// loader, the runtime, the sequencer and the settlement submitter. Kinds are
// strings rather than an enum so they round-trip cleanly through the JSON
// error envelope (see internal/httpx).
package fvlerrors

import "fmt"

type Kind string

const (
	// Input errors.
	KindParseError      Kind = "ParseError"
	KindValidationError Kind = "ValidationError"
	KindUnknownCommand  Kind = "UnknownCommand"
	KindBadAddress      Kind = "BadAddress"
	KindBadAmount       Kind = "BadAmount"

	// Admission errors (pre-nonce).
	KindUnknownSystem Kind = "UnknownSystem"
	KindUnknownOracle Kind = "UnknownOracle"
	KindUnknownAction Kind = "UnknownAction"

	// Execution errors (post-nonce, recorded in receipt).
	KindInvalidNonce         Kind = "InvalidNonce"
	KindInsufficientBalance  Kind = "InsufficientBalance"
	KindUnauthorized         Kind = "Unauthorized"
	KindPaused               Kind = "Paused"
	KindNotDeployer          Kind = "NotDeployer"
	KindCapExceeded          Kind = "CapExceeded"
	KindAlreadyMinted        Kind = "AlreadyMinted"

	// System errors (fatal).
	KindStateDivergence Kind = "StateDivergence"
	KindLogCorruption   Kind = "LogCorruption"
	KindIoFailure       Kind = "IoFailure"

	// Settlement errors (transient).
	KindRpcUnavailable Kind = "RpcUnavailable"
	KindRpcRejected    Kind = "RpcRejected"
)

// Error is the concrete type behind every taxonomy kind. Detail carries
// kind-specific structured fields (e.g. InvalidNonce{expected,got}).
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Detail  map[string]any
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WithPath(kind Kind, path, message string) *Error {
	return &Error{Kind: kind, Message: message, Path: path}
}

func WithDetail(kind Kind, message string, detail map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail}
}

func InvalidNonce(expected, got uint64) *Error {
	return WithDetail(KindInvalidNonce, fmt.Sprintf("expected nonce %d, got %d", expected, got), map[string]any{
		"expected": expected,
		"got":      got,
	})
}

func InsufficientBalance(required, have string) *Error {
	return WithDetail(KindInsufficientBalance, "insufficient balance", map[string]any{
		"required": required,
		"have":     have,
	})
}

func StateDivergence(block uint64, expected, actual string) *Error {
	return WithDetail(KindStateDivergence, fmt.Sprintf("state root diverged at block %d", block), map[string]any{
		"block":    block,
		"expected": expected,
		"actual":   actual,
	})
}

// Is reports whether err carries the given kind, unwrapping fvlerrors.Error.
func Is(err error, kind Kind) bool {
	fe, ok := err.(*Error)
	return ok && fe.Kind == kind
}
