// Package ledger defines the outcome contract shared by every repository.
//
// All state transitions in the system are conditional writes: a WHERE-guarded
// UPDATE whose precondition either holds (the row comes back) or does not
// (zero rows). The two sentinels below keep those business outcomes distinct
// from infrastructure faults, so a caller can turn ConditionNotMet into the
// declared failure event while an unreachable database still propagates as an
// error.
package ledger

import "github.com/pkg/errors"

var (
	// ErrConditionNotMet reports a conditional write whose precondition did
	// not hold. It is a business outcome, not a fault.
	ErrConditionNotMet = errors.New("condition not met")

	// ErrNotFound reports a read matching no rows.
	ErrNotFound = errors.New("not found")
)

// IsBusinessOutcome reports whether err is one of the expected empty-result
// outcomes rather than an infrastructure fault.
func IsBusinessOutcome(err error) bool {
	return errors.Is(err, ErrConditionNotMet) || errors.Is(err, ErrNotFound)
}
