package errs

// ErrorKind identifies a kind of ledger error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// Unauthorized is returned when the caller does not hold the role an entry point requires.
	Unauthorized = ErrorKind("unauthorized")
	// InvalidInput is returned for zero addresses/amounts, out-of-range stage numbers or bps.
	InvalidInput = ErrorKind("invalid input")
	// StateConflict is returned when the ledger is in the wrong lifecycle state for the call:
	// stage not configured/active, price outside tolerance, allocation exhausted, paused, finalized.
	StateConflict = ErrorKind("state conflict")
	// MultiSigPending is a deliberate halt, not a failure: the operation was proposed
	// and needs one more confirmation from a distinct role holder before it executes.
	MultiSigPending = ErrorKind("pending confirmation")
	// AlreadyConfirmed is returned when the same address confirms a pending operation twice.
	AlreadyConfirmed = ErrorKind("already confirmed")
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("not found")
	// Overflow is returned when amount arithmetic would exceed 128 bits.
	Overflow = ErrorKind("overflow uint128")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
