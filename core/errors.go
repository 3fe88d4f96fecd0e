package core

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error classes. Concrete errors are marked with one of these so that callers can
// decide between retrying, skipping an item and terminating the process.
var (
	// ErrConnection is an RPC transport failure. It is always retried.
	ErrConnection = errors.New("connection error")
	// ErrProof is an unavailable or invalid finality proof
	ErrProof = errors.New("proof error")
	// ErrSubmission is a transaction pool or nonce failure
	ErrSubmission = errors.New("submission error")
	// ErrConfiguration is a storage layout or chain descriptor mismatch
	ErrConfiguration = errors.New("configuration error")
)

// Concrete errors of the proof and submission classes. They are plain sentinels so
// that marks made with one of them never match another. Use IsProofError and
// IsSubmissionError to test for the class.
var (
	ErrProofUnavailable   = errors.New("finality proof unavailable")
	ErrHeaderNotFinalized = errors.New("header is not finalized")
	ErrSourceUnreachable  = errors.New("source chain unreachable")
	ErrInvalidProof       = errors.New("invalid finality proof")

	ErrTxAlreadyKnown = errors.New("transaction already known")
	ErrNonceTooLow    = errors.New("nonce too low")
	ErrPoolFull       = errors.New("transaction pool is full")
	ErrTxRejected     = errors.New("transaction rejected")

	ErrNotInitialized = errors.New("bridge is not initialized on the target chain")
)

var (
	proofErrors      = []error{ErrProof, ErrProofUnavailable, ErrHeaderNotFinalized, ErrSourceUnreachable, ErrInvalidProof}
	submissionErrors = []error{ErrSubmission, ErrTxAlreadyKnown, ErrNonceTooLow, ErrPoolFull, ErrTxRejected}
)

// NewConnectionError wraps err as a ConnectionError
func NewConnectionError(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrConnection)
}

// NewConfigurationError returns a new ConfigurationError
func NewConfigurationError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// WithClass wraps err with msg and marks it with every given class
func WithClass(err error, msg string, classes ...error) error {
	err = errors.Wrap(err, msg)
	for _, c := range classes {
		err = errors.Mark(err, c)
	}
	return err
}

// InvariantViolation is raised by a guard. It terminates the whole relay.
type InvariantViolation struct {
	Guard  string
	Reason string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: guard=%s: %s", v.Guard, v.Reason)
}

// NewInvariantViolation returns a new InvariantViolation
func NewInvariantViolation(guard, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Guard: guard, Reason: fmt.Sprintf(format, args...)}
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	return errors.IsAny(err, ErrConnection, ErrPoolFull)
}

// IsProofError reports whether err is a ProofError
func IsProofError(err error) bool {
	return errors.IsAny(err, proofErrors...)
}

// IsSubmissionError reports whether err is a SubmissionError
func IsSubmissionError(err error) bool {
	return errors.IsAny(err, submissionErrors...)
}

// IsFatal reports whether err must terminate the relay process
func IsFatal(err error) bool {
	var v *InvariantViolation
	return errors.As(err, &v) || errors.Is(err, ErrConfiguration)
}
