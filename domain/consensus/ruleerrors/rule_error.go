package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrMalformedHeader indicates a block that is not self-consistent,
	// for example a header-only block submitted where transactions are
	// required.
	ErrMalformedHeader = newRuleError("ErrMalformedHeader")

	// ErrProofOfWorkInvalid indicates a declared target outside of the
	// network's range, or a block hash above its declared target.
	ErrProofOfWorkInvalid = newRuleError("ErrProofOfWorkInvalid")

	// ErrDifficultyMismatch indicates declared bits that do not agree
	// with the difficulty calculated from the chain.
	ErrDifficultyMismatch = newRuleError("ErrDifficultyMismatch")

	// ErrCheckpointViolation indicates a block at a checkpointed height
	// whose hash differs from the checkpoint.
	ErrCheckpointViolation = newRuleError("ErrCheckpointViolation")

	// ErrVersionOutdated indicates the block version is too old and is no
	// longer accepted since the majority of the network has upgraded to a
	// newer version.
	ErrVersionOutdated = newRuleError("ErrVersionOutdated")

	// ErrNonFinalTransaction indicates a block containing a transaction
	// that is not final at the block's height and time.
	ErrNonFinalTransaction = newRuleError("ErrNonFinalTransaction")

	// ErrForkPointNotFound indicates a side branch whose split point with
	// the main chain could not be found in the block store.
	ErrForkPointNotFound = newRuleError("ErrForkPointNotFound")

	// ErrTimeTooOld indicates the time is not after the median time of
	// the last several blocks.
	ErrTimeTooOld = newRuleError("ErrTimeTooOld")

	// ErrTimeTooNew indicates that the block timestamp is too far in the
	// future.
	ErrTimeTooNew = newRuleError("ErrTimeTooNew")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")
)

// malformedHeaderErrors are the rule errors raised by checks that only look
// at the block itself and its immediate context.
var malformedHeaderErrors = []RuleError{
	ErrMalformedHeader,
	ErrTimeTooOld,
	ErrTimeTooNew,
	ErrBadMerkleRoot,
}

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation rules. The
// caller can use errors.Is with the sentinels above, or errors.As to
// determine if a failure was specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// Errorf attaches a formatted description and a stack trace to kind.
func Errorf(kind RuleError, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}

// IsRuleError reports whether err is, or wraps, a RuleError.
func IsRuleError(err error) bool {
	var ruleErr RuleError
	return errors.As(err, &ruleErr)
}

// IsMalformedHeader reports whether err is one of the rule errors that
// make a block invalid on its own.
func IsMalformedHeader(err error) bool {
	for _, kind := range malformedHeaderErrors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// StorageError indicates a failure of the block store. It never means the
// block itself is invalid.
type StorageError struct {
	inner error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("block store failure: %s", e.inner)
}

// Unwrap satisfies the errors.Unwrap interface
func (e StorageError) Unwrap() error {
	return e.inner
}

// NewStorageError wraps err in a StorageError. Errors that already are
// storage errors, and nil, are returned unchanged.
func NewStorageError(err error) error {
	if err == nil || IsStorageError(err) {
		return err
	}
	return errors.WithStack(StorageError{inner: err})
}

// IsStorageError reports whether err is, or wraps, a StorageError.
func IsStorageError(err error) bool {
	var storageErr StorageError
	return errors.As(err, &storageErr)
}
