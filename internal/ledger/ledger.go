// Package ledger holds the replay arithmetic shared by the spool and
// accessory engines. Remaining stock is always recomputed from the full
// set of usage records, never adjusted by deltas, so the result is
// independent of the order in which records were created, edited or
// deleted.
package ledger

import "printstock/internal/common"

// Replay derives the remaining amount from capacity and the complete
// set of consumed amounts, clamped at zero.
func Replay(capacity float64, amounts []float64) float64 {
	total := 0.0
	for _, a := range amounts {
		total += a
	}
	if total >= capacity {
		return 0
	}
	return capacity - total
}

// SoftClamp is the consumable-weight policy: consumption is advisory
// and never rejected. When the ledger total exceeds capacity the
// remaining amount clamps to zero and a warning accompanies the
// otherwise successful operation.
type SoftClamp struct{}

// WarnExceedsRemaining is the warning returned alongside a successful
// over-consuming usage record.
const WarnExceedsRemaining = "Usage amount exceeds remaining inventory; remaining weight clamped to zero"

// Apply recomputes remaining by full replay and reports the overdraw
// warning, if any.
func (SoftClamp) Apply(capacity float64, amounts []float64) (remaining float64, warning string) {
	total := 0.0
	for _, a := range amounts {
		total += a
	}
	if total > capacity {
		return 0, WarnExceedsRemaining
	}
	return capacity - total, ""
}

// HardReject is the accessory-count policy: stock is authoritative and
// a usage that exceeds it fails before anything is written.
type HardReject struct{}

// Check validates a requested quantity against remaining stock. The
// caller must hold the row lock so that check and decrement are one
// atomic unit.
func (HardReject) Check(remaining, requested int) error {
	if requested < 1 {
		return common.Validationf("usage quantity must be at least 1")
	}
	if requested > remaining {
		return common.Conflictf("Usage quantity exceeds remaining stock")
	}
	return nil
}
